package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// QueueInspector reports the backlog of the notification queue.
type QueueInspector interface {
	QueueLength() (int, error)
}

// HealthCheck reports the service as degraded when the broker cannot be inspected.
func HealthCheck(queue QueueInspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		length, err := queue.QueueLength()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "QueueUnavailable", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "queue_length": length})
	}
}
