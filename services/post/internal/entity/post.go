package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Privileged roles may manage content they do not own.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

type Media struct {
	ID   string    `json:"id"`
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
	Key  string    `json:"key"`
}

type Reply struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
}

// Post is the unit of persistence: comments, replies and likes only exist inside it.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	SanghID      string    `json:"sanghId,omitempty"`
	PostedAsRole string    `json:"postedAsRole,omitempty"`
	Caption      string    `json:"caption"`
	Media        []Media   `json:"media"`
	Likes        []string  `json:"likes"`
	Comments     []Comment `json:"comments"`
	IsHidden     bool      `json:"isHidden"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

func (p *Post) CommentCount() int {
	return len(p.Comments)
}

func (p *Post) IsLikedBy(actorID string) bool {
	for _, id := range p.Likes {
		if id == actorID {
			return true
		}
	}
	return false
}

// ToggleLike adds actorID to the likers or removes it. Removal filters by value so
// the remaining likers keep their order.
func (p *Post) ToggleLike(actorID string) (isLiked bool, likeCount int) {
	if !p.IsLikedBy(actorID) {
		p.Likes = append(p.Likes, actorID)
		return true, len(p.Likes)
	}

	kept := make([]string, 0, len(p.Likes))
	for _, id := range p.Likes {
		if id != actorID {
			kept = append(kept, id)
		}
	}
	p.Likes = kept
	return false, len(p.Likes)
}

func (p *Post) AddComment(actorID, text string, now time.Time) Comment {
	comment := Comment{
		ID:        uuid.New().String(),
		AuthorID:  actorID,
		Text:      text,
		CreatedAt: now,
		Replies:   []Reply{},
	}
	p.Comments = append(p.Comments, comment)
	return comment
}

func (p *Post) FindComment(commentID string) (*Comment, error) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], nil
		}
	}
	return nil, ErrCommentNotFound
}

// AddReply appends a reply and returns the updated comment, whose author is
// the one to notify.
func (p *Post) AddReply(commentID, actorID, text string, now time.Time) (Reply, Comment, error) {
	comment, err := p.FindComment(commentID)
	if err != nil {
		return Reply{}, Comment{}, err
	}

	reply := Reply{
		ID:        uuid.New().String(),
		AuthorID:  actorID,
		Text:      text,
		CreatedAt: now,
	}
	comment.Replies = append(comment.Replies, reply)
	return reply, *comment, nil
}

func (p *Post) FindMedia(mediaID string) (Media, error) {
	for _, m := range p.Media {
		if m.ID == mediaID {
			return m, nil
		}
	}
	return Media{}, ErrMediaNotFound
}

func (p *Post) RemoveMedia(mediaID string) {
	kept := make([]Media, 0, len(p.Media))
	for _, m := range p.Media {
		if m.ID != mediaID {
			kept = append(kept, m)
		}
	}
	p.Media = kept
}

// CanManage guards edit, delete, hide/unhide and media removal.
func (p *Post) CanManage(actor Actor) bool {
	return actor.ID != "" && (actor.ID == p.AuthorID || actor.IsPrivileged())
}

// VisibleTo reports whether actor may see the post at all. Hidden posts are only
// visible to those who can manage them.
func (p *Post) VisibleTo(actor Actor) bool {
	return !p.IsHidden || p.CanManage(actor)
}

type PostFilter struct {
	SanghID  string
	AuthorID string
	Page     int
	Limit    int
}

// Offset is the number of items before the page. It saturates instead of
// overflowing for absurd page numbers.
func (f PostFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Total: total, Page: page, Pages: pages}
}

type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

type CommentPage struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}
