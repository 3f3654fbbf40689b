package usecase

import (
	"errors"
	"fmt"
	"io"

	"sangh-connect/pkg/s3"
	"sangh-connect/services/post/internal/entity"

	"github.com/google/uuid"
)

// MediaStore is the blob store holding post media.
type MediaStore interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
	DeleteFile(key string) error
}

type MediaUpload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// uploadAll stores every upload or none: on the first failure the files already
// stored by this call are deleted again.
func (uc *postUseCase) uploadAll(actorID string, uploads []MediaUpload) ([]entity.Media, error) {
	for _, upload := range uploads {
		if _, err := entity.MediaTypeOf(upload.ContentType); err != nil {
			return nil, err
		}
	}

	media := make([]entity.Media, 0, len(uploads))
	for _, upload := range uploads {
		item, err := uc.uploadOne(actorID, upload)
		if err != nil {
			uc.discardMedia(media)
			return nil, err
		}
		media = append(media, item)
	}
	return media, nil
}

func (uc *postUseCase) uploadOne(actorID string, upload MediaUpload) (entity.Media, error) {
	mediaType, err := entity.MediaTypeOf(upload.ContentType)
	if err != nil {
		return entity.Media{}, err
	}

	src, err := upload.Open()
	if err != nil {
		return entity.Media{}, entity.NewValidationError("media", fmt.Sprintf("failed to open %s", upload.Filename))
	}
	defer src.Close()

	key := s3.ObjectKey(actorID, upload.Filename, uc.now())
	url, err := uc.media.UploadFile(key, src, upload.ContentType)
	if err != nil {
		uc.logger.Error("[MEDIA] Upload of %s failed: %v", key, err)
		return entity.Media{}, entity.NewStorageError("upload media", err)
	}

	return entity.Media{
		ID:   uuid.New().String(),
		URL:  url,
		Type: mediaType,
		Key:  key,
	}, nil
}

// discardMedia is the compensating cleanup after a failed create or update.
func (uc *postUseCase) discardMedia(media []entity.Media) {
	if err := uc.purgeMedia(media); err != nil {
		uc.logger.Warn("[MEDIA] Cleanup after failed write left orphaned files: %v", err)
	}
}

// purgeMedia deletes every item, continuing past failures, and returns them joined.
func (uc *postUseCase) purgeMedia(media []entity.Media) error {
	var errs []error
	for _, item := range media {
		if err := uc.media.DeleteFile(item.Key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", item.Key, err))
		}
	}
	return errors.Join(errs...)
}
