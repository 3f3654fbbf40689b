package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/queue"
	"sangh-connect/services/notification/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUseCase(t *testing.T) (*notificationUseCase, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	uc := NewNotificationUseCase(client, logger.New()).(*notificationUseCase)
	return uc, mr, client
}

func commentEvent(recipient, postID string) queue.Event {
	return queue.Event{
		Type:        queue.EventPostComment,
		RecipientID: recipient,
		ActorID:     "u2",
		PostID:      postID,
		CommentID:   "c1",
		Preview:     "Nice post",
		Priority:    5,
		OccurredAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandleEvent_StoresNotification(t *testing.T) {
	uc, mr, _ := setupUseCase(t)

	require.NoError(t, uc.HandleEvent(commentEvent("u1", "p1")))

	items, err := mr.List(NotificationKey("u1"))
	require.NoError(t, err)
	require.Len(t, items, 1)

	var n entity.Notification
	require.NoError(t, json.Unmarshal([]byte(items[0]), &n))
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, "post_comment", n.Type)
	assert.Equal(t, "New comment", n.Title)
	assert.Equal(t, `Someone commented on your post: "Nice post"`, n.Message)
	assert.Equal(t, "u2", n.ActorID)
	assert.Equal(t, "p1", n.PostID)
	assert.Equal(t, "c1", n.CommentID)
	assert.True(t, n.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, notificationTTL, mr.TTL(NotificationKey("u1")))
}

func TestHandleEvent_Titles(t *testing.T) {
	tests := []struct {
		eventType queue.EventType
		title     string
		message   string
	}{
		{queue.EventPostLike, "New like", "Someone liked your post"},
		{queue.EventPostComment, "New comment", "Someone commented on your post"},
		{queue.EventCommentReply, "New reply", "Someone replied to your comment"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			title, message, err := describe(queue.Event{Type: tt.eventType})
			require.NoError(t, err)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestHandleEvent_UnknownType(t *testing.T) {
	uc, mr, _ := setupUseCase(t)

	err := uc.HandleEvent(queue.Event{Type: "new_post", RecipientID: "u1", ActorID: "u2", PostID: "p1"})
	assert.Error(t, err)
	assert.False(t, mr.Exists(NotificationKey("u1")))
}

func TestHandleEvent_SkipsSelfNotification(t *testing.T) {
	uc, mr, _ := setupUseCase(t)

	event := commentEvent("u2", "p1")
	require.NoError(t, uc.HandleEvent(event))
	assert.False(t, mr.Exists(NotificationKey("u2")))
}

func TestHandleEvent_UsesClockWhenTimestampMissing(t *testing.T) {
	uc, _, _ := setupUseCase(t)
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	event := commentEvent("u1", "p1")
	event.OccurredAt = time.Time{}
	require.NoError(t, uc.HandleEvent(event))

	notifications, _, err := uc.GetNotifications(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].CreatedAt.Equal(fixed))
}

func TestHandleEvent_KeepsNewestHundred(t *testing.T) {
	uc, mr, _ := setupUseCase(t)

	for i := 0; i < maxStoredNotifications+5; i++ {
		require.NoError(t, uc.HandleEvent(commentEvent("u1", "p1")))
	}

	items, err := mr.List(NotificationKey("u1"))
	require.NoError(t, err)
	assert.Len(t, items, maxStoredNotifications)
}

func TestHandleEvent_PublishesToSubscribers(t *testing.T) {
	uc, _, client := setupUseCase(t)
	ctx := context.Background()

	pubsub := client.Subscribe(ctx, NotificationKey("u1"))
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, uc.HandleEvent(commentEvent("u1", "p1")))

	select {
	case msg := <-pubsub.Channel():
		var n entity.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		assert.Equal(t, "p1", n.PostID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestGetNotifications_Paginates(t *testing.T) {
	uc, _, _ := setupUseCase(t)
	ctx := context.Background()

	for _, postID := range []string{"p1", "p2", "p3"} {
		require.NoError(t, uc.HandleEvent(commentEvent("u1", postID)))
	}

	notifications, total, err := uc.GetNotifications(ctx, "u1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, notifications, 2)
	assert.Equal(t, "p3", notifications[0].PostID)
	assert.Equal(t, "p2", notifications[1].PostID)

	notifications, _, err = uc.GetNotifications(ctx, "u1", 2, 2)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "p1", notifications[0].PostID)
}

func TestGetNotifications_Empty(t *testing.T) {
	uc, _, _ := setupUseCase(t)

	notifications, total, err := uc.GetNotifications(context.Background(), "nobody", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, notifications)
}

func TestGetNotifications_SkipsMalformedEntries(t *testing.T) {
	uc, mr, _ := setupUseCase(t)

	require.NoError(t, uc.HandleEvent(commentEvent("u1", "p1")))
	_, err := mr.Lpush(NotificationKey("u1"), "not json")
	require.NoError(t, err)

	notifications, total, err := uc.GetNotifications(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, notifications, 1)
	assert.Equal(t, "p1", notifications[0].PostID)
}

func TestDeleteNotificationByPostID(t *testing.T) {
	uc, _, _ := setupUseCase(t)
	ctx := context.Background()

	require.NoError(t, uc.HandleEvent(commentEvent("u1", "p1")))
	require.NoError(t, uc.HandleEvent(commentEvent("u1", "p2")))
	like := commentEvent("u1", "p1")
	like.Type = queue.EventPostLike
	require.NoError(t, uc.HandleEvent(like))

	deleted, err := uc.DeleteNotificationByPostID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	notifications, total, err := uc.GetNotifications(ctx, "u1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, notifications, 1)
	assert.Equal(t, "p2", notifications[0].PostID)

	deleted, err = uc.DeleteNotificationByPostID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
