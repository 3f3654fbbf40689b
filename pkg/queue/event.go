package queue

import "time"

type EventType string

const (
	EventPostLike     EventType = "post_like"
	EventPostComment  EventType = "post_comment"
	EventCommentReply EventType = "comment_reply"
)

// EventTypes lists every routing key bound to the notification queue.
var EventTypes = []EventType{EventPostLike, EventPostComment, EventCommentReply}

// Event is an engagement notification addressed to RecipientID.
type Event struct {
	Type        EventType `json:"type"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	PostID      string    `json:"post_id"`
	CommentID   string    `json:"comment_id,omitempty"`
	ReplyID     string    `json:"reply_id,omitempty"`
	Preview     string    `json:"preview,omitempty"`
	Priority    int       `json:"priority"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func clampPriority(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return uint8(p)
}
