package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PostCollection = "posts"

type PostModel struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	AuthorID     string             `bson:"authorId"`
	SanghID      string             `bson:"sanghId,omitempty"`
	PostedAsRole string             `bson:"postedAsRole,omitempty"`
	Caption      string             `bson:"caption"`
	Media        []MediaModel       `bson:"media"`
	Likes        []string           `bson:"likes"`
	Comments     []CommentModel     `bson:"comments"`
	IsHidden     bool               `bson:"isHidden"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type MediaModel struct {
	ID   string `bson:"id"`
	URL  string `bson:"url"`
	Type string `bson:"type"`
	Key  string `bson:"key"`
}

type CommentModel struct {
	ID        string       `bson:"id"`
	AuthorID  string       `bson:"authorId"`
	Text      string       `bson:"text"`
	CreatedAt time.Time    `bson:"createdAt"`
	Replies   []ReplyModel `bson:"replies"`
}

type ReplyModel struct {
	ID        string    `bson:"id"`
	AuthorID  string    `bson:"authorId"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"createdAt"`
}
