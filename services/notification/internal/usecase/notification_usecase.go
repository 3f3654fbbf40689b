package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/queue"
	"sangh-connect/services/notification/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	maxStoredNotifications = 100
	notificationTTL        = 30 * 24 * time.Hour
)

// NotificationKey is both the list key and the pub/sub channel of a user.
func NotificationKey(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

type NotificationUseCase interface {
	HandleEvent(event queue.Event) error
	GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	DeleteNotificationByPostID(ctx context.Context, userID, postID string) (int, error)
}

type notificationUseCase struct {
	redisClient *redis.Client
	logger      *logger.Logger
	now         func() time.Time
}

func NewNotificationUseCase(redisClient *redis.Client, logger *logger.Logger) NotificationUseCase {
	return &notificationUseCase{
		redisClient: redisClient,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *notificationUseCase) HandleEvent(event queue.Event) error {
	if event.RecipientID == "" || event.ActorID == event.RecipientID {
		uc.logger.Warn("[NOTIFICATION HANDLER] Dropping event %s for post %s: no distinct recipient", event.Type, event.PostID)
		return nil
	}

	title, message, err := describe(event)
	if err != nil {
		return err
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = uc.now()
	}

	notification := entity.Notification{
		ID:        uuid.NewString(),
		UserID:    event.RecipientID,
		Type:      string(event.Type),
		Title:     title,
		Message:   message,
		ActorID:   event.ActorID,
		PostID:    event.PostID,
		CommentID: event.CommentID,
		ReplyID:   event.ReplyID,
		Preview:   event.Preview,
		CreatedAt: createdAt.UTC(),
	}

	if err := uc.store(context.Background(), notification); err != nil {
		return err
	}

	uc.logger.Info("[NOTIFICATION HANDLER] Stored %s notification for user %s (post %s)", event.Type, event.RecipientID, event.PostID)
	return nil
}

func describe(event queue.Event) (string, string, error) {
	switch event.Type {
	case queue.EventPostLike:
		return "New like", "Someone liked your post", nil
	case queue.EventPostComment:
		return "New comment", withPreview("Someone commented on your post", event.Preview), nil
	case queue.EventCommentReply:
		return "New reply", withPreview("Someone replied to your comment", event.Preview), nil
	default:
		return "", "", fmt.Errorf("unknown notification type: %s", event.Type)
	}
}

func withPreview(message, preview string) string {
	if preview == "" {
		return message
	}
	return fmt.Sprintf("%s: %q", message, preview)
}

// store keeps the newest notifications per user and fans the payload out to
// any live websocket subscribers.
func (uc *notificationUseCase) store(ctx context.Context, notification entity.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := NotificationKey(notification.UserID)

	pipe := uc.redisClient.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, maxStoredNotifications-1)
	pipe.Expire(ctx, key, notificationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if err := uc.redisClient.Publish(ctx, key, payload).Err(); err != nil {
		uc.logger.Warn("[NOTIFICATION HANDLER] Failed to publish notification to %s: %v", key, err)
	}
	return nil
}

func (uc *notificationUseCase) GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	key := NotificationKey(userID)

	total, err := uc.redisClient.LLen(ctx, key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	raw, err := uc.redisClient.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read notifications: %w", err)
	}

	notifications := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var n entity.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			uc.logger.Warn("[NOTIFICATION] Skipping malformed notification for user %s: %v", userID, err)
			continue
		}
		notifications = append(notifications, n)
	}

	return notifications, total, nil
}

// DeleteNotificationByPostID drops every stored notification about postID.
func (uc *notificationUseCase) DeleteNotificationByPostID(ctx context.Context, userID, postID string) (int, error) {
	key := NotificationKey(userID)

	raw, err := uc.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read notifications: %w", err)
	}

	deleted := 0
	for _, item := range raw {
		var n entity.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		if n.PostID != postID {
			continue
		}
		removed, err := uc.redisClient.LRem(ctx, key, 0, item).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete notification: %w", err)
		}
		deleted += int(removed)
	}

	if deleted > 0 {
		uc.logger.Info("[NOTIFICATION] Deleted %d notification(s) for user %s, post %s", deleted, userID, postID)
	}
	return deleted, nil
}
