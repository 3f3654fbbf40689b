package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sangh-connect/pkg/logger"
	"sangh-connect/services/post/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}

// handleServiceError maps use case errors to HTTP responses.
func handleServiceError(c *gin.Context, log *logger.Logger, err error) {
	var validationErr *entity.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "InvalidRequest",
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})

	case errors.Is(err, entity.ErrPostNotFound):
		writeError(c, http.StatusNotFound, "PostNotFound", "Post not found")

	case errors.Is(err, entity.ErrCommentNotFound):
		writeError(c, http.StatusNotFound, "CommentNotFound", "Comment not found")

	case errors.Is(err, entity.ErrMediaNotFound):
		writeError(c, http.StatusNotFound, "MediaNotFound", "Media not found")

	case errors.Is(err, entity.ErrSanghNotFound):
		writeError(c, http.StatusNotFound, "SanghNotFound", "Sangh not found")

	case errors.Is(err, entity.ErrNotAuthorized):
		writeError(c, http.StatusForbidden, "NotAuthorized", "You are not allowed to modify this post")

	case errors.Is(err, entity.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, "Unauthenticated", "Authentication required")

	case entity.IsStorageError(err):
		log.Error("Storage failure in post handler %s %s: %v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, "StorageError", "Failed to store media, please retry")

	default:
		// Don't leak internal error details to clients
		log.Error("Unexpected error in post handler %s %s: %v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}

// handleBindError renders request binding failures field by field.
func handleBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		writeError(c, http.StatusBadRequest, "InvalidRequest", "Malformed request body")
		return
	}

	fields := make([]gin.H, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, gin.H{"field": lowerFirst(fe.Field()), "rule": fe.Tag()})
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "InvalidRequest",
		"message": fieldMessage(fieldErrs[0]),
		"fields":  fields,
	})
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
