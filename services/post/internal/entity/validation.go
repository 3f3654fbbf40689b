package entity

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Limits struct {
	CaptionMaxLength int
	CommentMaxLength int
	ReplyMaxLength   int
	MaxMediaPerPost  int
}

// NormalizeText trims text and checks it against max runes. Empty text is rejected
// when required.
func NormalizeText(field, text string, max int, required bool) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" && required {
		return "", NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	if max > 0 && utf8.RuneCountInString(text) > max {
		return "", NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return text, nil
}

// ValidateContent enforces that a post carries a caption or at least one media item.
func ValidateContent(caption string, mediaCount, maxMedia int) error {
	if strings.TrimSpace(caption) == "" && mediaCount == 0 {
		return NewValidationError("caption", "post must have a caption or at least one media file")
	}
	if maxMedia > 0 && mediaCount > maxMedia {
		return NewValidationError("media", fmt.Sprintf("maximum %d media files allowed per post", maxMedia))
	}
	return nil
}

// MediaTypeOf classifies an upload by its content type.
func MediaTypeOf(contentType string) (MediaType, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaTypeImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return MediaTypeVideo, nil
	default:
		return "", NewValidationError("media", fmt.Sprintf("unsupported media type %q", contentType))
	}
}
