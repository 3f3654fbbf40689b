package http

import (
	"net/http"
	"strconv"

	"sangh-connect/pkg/jwt"
	"sangh-connect/pkg/logger"
	"sangh-connect/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	redisClient         *redis.Client
	logger              *logger.Logger
	jwtService          *jwt.Service
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, redisClient *redis.Client, logger *logger.Logger, jwtService *jwt.Service) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		redisClient:         redisClient,
		logger:              logger,
		jwtService:          jwtService,
	}
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  Newest first. Only the latest 100 notifications are kept.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of notifications to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		writeError(c, http.StatusUnauthorized, "Unauthenticated", "Authentication required")
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	notifications, total, err := h.notificationUseCase.GetNotifications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get notifications: %v", err)
		writeError(c, http.StatusInternalServerError, "InternalServerError", "Failed to get notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"total":         total,
		"offset":        offset,
	})
}

// DeleteNotificationByPostID godoc
// @Summary      Delete notifications of a post
// @Description  Clears the user's notifications about a post once it has been viewed
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        postId path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /notifications/{postId} [delete]
func (h *NotificationHandler) DeleteNotificationByPostID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		writeError(c, http.StatusUnauthorized, "Unauthenticated", "Authentication required")
		return
	}

	postID := c.Param("postId")
	if postID == "" {
		writeError(c, http.StatusBadRequest, "InvalidRequest", "Post ID required")
		return
	}

	deleted, err := h.notificationUseCase.DeleteNotificationByPostID(c.Request.Context(), userID, postID)
	if err != nil {
		h.logger.Error("Failed to delete notification: %v", err)
		writeError(c, http.StatusInternalServerError, "InternalServerError", "Failed to delete notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification deleted",
		"deleted": deleted,
	})
}

// HandleWebSocket godoc
// @Summary      Live notification stream
// @Description  Upgrades to a WebSocket and pushes each new notification as a JSON text frame. Browsers pass the bearer token as a query parameter.
// @Tags         notifications
// @Param        token query string false "JWT when no Authorization header is sent"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /notifications/ws [get]
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")

	if userID == "" {
		token := c.Query("token")
		if token == "" {
			writeError(c, http.StatusUnauthorized, "Unauthenticated", "Token required")
			return
		}

		claims, err := h.jwtService.ValidateToken(token)
		if err != nil {
			writeError(c, http.StatusUnauthorized, "Unauthenticated", "Invalid or expired token")
			return
		}

		userID = claims.UserID
	}

	if userID == "" {
		writeError(c, http.StatusUnauthorized, "Unauthenticated", "Authentication required")
		return
	}

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, usecase.NotificationKey(userID))
	defer pubsub.Close()

	// Wait for the subscription to be confirmed so nothing published after
	// the upgrade is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("Failed to subscribe to notifications for user %s: %v", userID, err)
		writeError(c, http.StatusInternalServerError, "InternalServerError", "Failed to subscribe")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket connected for user %s", userID)

	redisChannel := pubsub.Channel()
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case msg, ok := <-redisChannel:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					h.logger.Error("Failed to write WebSocket message: %v", err)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read error: %v", err)
			}
			break
		}
	}

	close(done)
	h.logger.Info("WebSocket disconnected for user %s", userID)
}
