package persistent

import (
	"sangh-connect/services/post/internal/entity"
	"sangh-connect/services/post/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:           m.ID.Hex(),
		AuthorID:     m.AuthorID,
		SanghID:      m.SanghID,
		PostedAsRole: m.PostedAsRole,
		Caption:      m.Caption,
		Media:        make([]entity.Media, 0, len(m.Media)),
		Likes:        make([]string, 0, len(m.Likes)),
		Comments:     make([]entity.Comment, 0, len(m.Comments)),
		IsHidden:     m.IsHidden,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	for _, media := range m.Media {
		post.Media = append(post.Media, entity.Media{
			ID:   media.ID,
			URL:  media.URL,
			Type: entity.MediaType(media.Type),
			Key:  media.Key,
		})
	}
	post.Likes = append(post.Likes, m.Likes...)
	for i := range m.Comments {
		post.Comments = append(post.Comments, ToCommentEntity(&m.Comments[i]))
	}

	return post
}

// ToPostModel fails only when the entity carries an id that is not an ObjectID.
func ToPostModel(e *entity.Post) (*model.PostModel, error) {
	if e == nil {
		return nil, nil
	}

	post := &model.PostModel{
		AuthorID:     e.AuthorID,
		SanghID:      e.SanghID,
		PostedAsRole: e.PostedAsRole,
		Caption:      e.Caption,
		Media:        make([]model.MediaModel, 0, len(e.Media)),
		Likes:        make([]string, 0, len(e.Likes)),
		Comments:     make([]model.CommentModel, 0, len(e.Comments)),
		IsHidden:     e.IsHidden,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}

	if e.ID != "" {
		objID, err := primitive.ObjectIDFromHex(e.ID)
		if err != nil {
			return nil, entity.ErrPostNotFound
		}
		post.ID = objID
	}

	for _, media := range e.Media {
		post.Media = append(post.Media, model.MediaModel{
			ID:   media.ID,
			URL:  media.URL,
			Type: string(media.Type),
			Key:  media.Key,
		})
	}
	post.Likes = append(post.Likes, e.Likes...)
	for i := range e.Comments {
		post.Comments = append(post.Comments, ToCommentModel(&e.Comments[i]))
	}

	return post, nil
}

func ToCommentEntity(m *model.CommentModel) entity.Comment {
	if m == nil {
		return entity.Comment{}
	}

	comment := entity.Comment{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		Replies:   make([]entity.Reply, 0, len(m.Replies)),
	}
	for _, r := range m.Replies {
		comment.Replies = append(comment.Replies, entity.Reply{
			ID:        r.ID,
			AuthorID:  r.AuthorID,
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		})
	}
	return comment
}

func ToCommentModel(e *entity.Comment) model.CommentModel {
	if e == nil {
		return model.CommentModel{}
	}

	comment := model.CommentModel{
		ID:        e.ID,
		AuthorID:  e.AuthorID,
		Text:      e.Text,
		CreatedAt: e.CreatedAt,
		Replies:   make([]model.ReplyModel, 0, len(e.Replies)),
	}
	for _, r := range e.Replies {
		comment.Replies = append(comment.Replies, model.ReplyModel{
			ID:        r.ID,
			AuthorID:  r.AuthorID,
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		})
	}
	return comment
}
