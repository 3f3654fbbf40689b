package entity

import "time"

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActorID   string    `json:"actorId"`
	PostID    string    `json:"postId"`
	CommentID string    `json:"commentId,omitempty"`
	ReplyID   string    `json:"replyId,omitempty"`
	Preview   string    `json:"preview,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
