package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sangh-connect/pkg/jwt"
	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/queue"
	"sangh-connect/services/notification/internal/entity"
	"sangh-connect/services/notification/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	router  *gin.Engine
	useCase usecase.NotificationUseCase
}

func setupNotificationTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.New()
	uc := usecase.NewNotificationUseCase(client, log)
	handler := NewNotificationHandler(uc, client, log, jwt.NewService(testSecret))

	withUser := func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}

	router := gin.New()
	router.GET("/notifications/ws", handler.HandleWebSocket)
	router.GET("/notifications", withUser, handler.GetNotifications)
	router.DELETE("/notifications/:postId", withUser, handler.DeleteNotificationByPostID)

	return &testEnv{router: router, useCase: uc}
}

func event(eventType queue.EventType, recipient, postID string) queue.Event {
	return queue.Event{
		Type:        eventType,
		RecipientID: recipient,
		ActorID:     "u2",
		PostID:      postID,
		OccurredAt:  time.Now().UTC(),
	}
}

func TestGetNotifications_Unauthorized(t *testing.T) {
	env := setupNotificationTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notifications", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Unauthenticated", response["error"])
	assert.Equal(t, "Authentication required", response["message"])
}

func TestGetNotifications_Success(t *testing.T) {
	env := setupNotificationTest(t)
	require.NoError(t, env.useCase.HandleEvent(event(queue.EventPostLike, "u1", "p1")))
	require.NoError(t, env.useCase.HandleEvent(event(queue.EventPostComment, "u1", "p2")))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notifications?limit=1&offset=1", nil)
	req.Header.Set("X-User-ID", "u1")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Notifications []entity.Notification `json:"notifications"`
		Count         int                   `json:"count"`
		Total         int64                 `json:"total"`
		Offset        int                   `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, int64(2), response.Total)
	assert.Equal(t, 1, response.Offset)
	require.Len(t, response.Notifications, 1)
	assert.Equal(t, "p1", response.Notifications[0].PostID)
	assert.Equal(t, "post_like", response.Notifications[0].Type)
}

func TestGetNotifications_IgnoresInvalidPaging(t *testing.T) {
	env := setupNotificationTest(t)
	require.NoError(t, env.useCase.HandleEvent(event(queue.EventPostLike, "u1", "p1")))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notifications?limit=500&offset=-3", nil)
	req.Header.Set("X-User-ID", "u1")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
	assert.Equal(t, float64(0), response["offset"])
}

func TestDeleteNotificationByPostID_Unauthorized(t *testing.T) {
	env := setupNotificationTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/notifications/p1", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteNotificationByPostID_Success(t *testing.T) {
	env := setupNotificationTest(t)
	require.NoError(t, env.useCase.HandleEvent(event(queue.EventPostLike, "u1", "p1")))
	require.NoError(t, env.useCase.HandleEvent(event(queue.EventPostComment, "u1", "p2")))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/notifications/p1", nil)
	req.Header.Set("X-User-ID", "u1")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["deleted"])
}

func TestHandleWebSocket_RequiresToken(t *testing.T) {
	env := setupNotificationTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notifications/ws", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Unauthenticated", response["error"])
	assert.Equal(t, "Token required", response["message"])
}

func TestHandleWebSocket_RejectsInvalidToken(t *testing.T) {
	env := setupNotificationTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notifications/ws?token=garbage", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Unauthenticated", response["error"])
	assert.Equal(t, "Invalid or expired token", response["message"])
}

func TestHandleWebSocket_StreamsNotifications(t *testing.T) {
	env := setupNotificationTest(t)

	server := httptest.NewServer(env.router)
	defer server.Close()

	token, err := jwt.NewService(testSecret).GenerateToken("u1", "user")
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/notifications/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, env.useCase.HandleEvent(event(queue.EventCommentReply, "u1", "p9")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	messageType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)

	var n entity.Notification
	require.NoError(t, json.Unmarshal(payload, &n))
	assert.Equal(t, "comment_reply", n.Type)
	assert.Equal(t, "p9", n.PostID)
	assert.Equal(t, "New reply", n.Title)
}
