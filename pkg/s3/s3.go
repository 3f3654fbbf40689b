package s3

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sangh-connect/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

type Client struct {
	s3Client   *s3.S3
	bucket     string
	originBase string
	cdnBase    string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := &Client{
		s3Client: s3.New(sess),
		bucket:   cfg.S3BucketName,
		cdnBase:  strings.TrimRight(cfg.CDNBaseURL, "/"),
	}
	client.originBase = originBaseURL(cfg.AWSEndpoint, cfg.S3UseSSL != "false", cfg.AWSRegion, cfg.S3BucketName)

	// Ensure bucket exists (for MinIO)
	_, err = client.s3Client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3BucketName),
	})
	if err != nil {
		// Creation fails harmlessly when the bucket exists but HEAD was denied
		_, _ = client.s3Client.CreateBucket(&s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3BucketName),
		})
	}

	return client, nil
}

func (c *Client) UploadFile(key string, file io.Reader, contentType string) (string, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err := c.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return c.originBase + "/" + key, nil
}

func (c *Client) DeleteFile(key string) error {
	_, err := c.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// CDNURL rewrites an object URL from this bucket to the distribution domain.
// URLs from elsewhere, or any URL when no CDN is configured, are returned unchanged.
func (c *Client) CDNURL(rawURL string) string {
	return rewriteToCDN(rawURL, c.originBase, c.cdnBase)
}

// ObjectKey names an upload as posts/<actor>/<unix millis>-<uuid><ext>.
// The uuid keeps two uploads by one actor in the same millisecond apart.
func ObjectKey(actorID, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("posts/%s/%d-%s%s", actorID, now.UnixMilli(), uuid.New().String(), ext)
}

func originBaseURL(endpoint string, useSSL bool, region, bucket string) string {
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		// MinIO URL format
		protocol := "http"
		if useSSL {
			protocol = "https"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s", protocol, strings.TrimRight(endpoint, "/"), bucket)
	}

	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

func rewriteToCDN(rawURL, originBase, cdnBase string) string {
	if cdnBase == "" || originBase == "" {
		return rawURL
	}
	if !strings.HasPrefix(rawURL, originBase+"/") {
		return rawURL
	}
	return cdnBase + strings.TrimPrefix(rawURL, originBase)
}
