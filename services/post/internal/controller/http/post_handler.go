package http

import (
	"context"
	"io"
	"net/http"

	"sangh-connect/pkg/logger"
	"sangh-connect/services/post/internal/entity"
	"sangh-connect/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

// URLRewriter maps stored media URLs to their public form.
type URLRewriter interface {
	CDNURL(rawURL string) string
}

type PostHandler struct {
	postUseCase usecase.PostUseCase
	urls        URLRewriter
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, urls URLRewriter, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		urls:        urls,
		logger:      logger,
	}
}

func actorFrom(c *gin.Context) entity.Actor {
	return entity.Actor{
		ID:   c.GetString("user_id"),
		Role: c.GetString("role"),
	}
}

// requestContext detaches from client cancellation so a disconnect cannot
// abort a multi-step mutation halfway.
func requestContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *PostHandler) mediaURL(raw string) string {
	if h.urls == nil {
		return raw
	}
	return h.urls.CDNURL(raw)
}

func (h *PostHandler) formatPostResponse(post *entity.Post, actor entity.Actor) gin.H {
	media := make([]gin.H, 0, len(post.Media))
	for _, m := range post.Media {
		media = append(media, gin.H{
			"id":   m.ID,
			"url":  h.mediaURL(m.URL),
			"type": m.Type,
		})
	}

	comments := post.Comments
	if comments == nil {
		comments = []entity.Comment{}
	}

	response := gin.H{
		"id":           post.ID,
		"authorId":     post.AuthorID,
		"caption":      post.Caption,
		"media":        media,
		"likeCount":    post.LikeCount(),
		"isLiked":      post.IsLikedBy(actor.ID),
		"commentCount": post.CommentCount(),
		"comments":     comments,
		"isHidden":     post.IsHidden,
		"createdAt":    post.CreatedAt,
		"updatedAt":    post.UpdatedAt,
	}

	if post.SanghID != "" {
		response["sanghId"] = post.SanghID
		response["postedAsRole"] = post.PostedAsRole
	}

	return response
}

type CreatePostRequest struct {
	Caption      string `form:"caption" json:"caption"`
	SanghID      string `form:"sanghId" json:"sanghId"`
	PostedAsRole string `form:"postedAsRole" json:"postedAsRole"`
}

// mediaUploads collects the files sent under "media" in a multipart body.
func mediaUploads(c *gin.Context) ([]usecase.MediaUpload, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File["media"]
	uploads := make([]usecase.MediaUpload, 0, len(files))
	for _, file := range files {
		uploads = append(uploads, usecase.MediaUpload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return file.Open()
			},
		})
	}
	return uploads, nil
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post with a caption and/or media files. A post needs a caption or at least one media file. Set sanghId and postedAsRole to publish on behalf of a Sangh.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        caption formData string false "Post caption"
// @Param        sanghId formData string false "Sangh the post is published for"
// @Param        postedAsRole formData string false "Office held in the Sangh (e.g. president)"
// @Param        media formData file false "Image or video files, repeatable"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	actor := actorFrom(c)

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		handleBindError(c, err)
		return
	}

	uploads, err := mediaUploads(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "InvalidRequest", "Failed to parse form")
		return
	}

	post, err := h.postUseCase.CreatePost(requestContext(c), actor, usecase.CreatePostInput{
		Caption:      req.Caption,
		SanghID:      req.SanghID,
		PostedAsRole: req.PostedAsRole,
		Media:        uploads,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, h.formatPostResponse(post, actor))
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Get a post with its comments and replies. Hidden posts are only returned to their author and admins.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	actor := actorFrom(c)

	post, err := h.postUseCase.GetPost(requestContext(c), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.formatPostResponse(post, actor))
}

type ListPostsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=50"`
	SanghID  string `form:"sanghId"`
	AuthorID string `form:"authorId"`
}

// ListPosts godoc
// @Summary      List posts
// @Description  Paginated list of visible posts, newest first, optionally filtered by Sangh or author
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number (default 1)"
// @Param        limit query int false "Page size (default 10, max 50)"
// @Param        sanghId query string false "Filter by Sangh"
// @Param        authorId query string false "Filter by author"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	actor := actorFrom(c)

	var query ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}

	page, err := h.postUseCase.ListPosts(requestContext(c), entity.PostFilter{
		SanghID:  query.SanghID,
		AuthorID: query.AuthorID,
		Page:     query.Page,
		Limit:    query.Limit,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	posts := make([]gin.H, 0, len(page.Posts))
	for i := range page.Posts {
		posts = append(posts, h.formatPostResponse(&page.Posts[i], actor))
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "pagination": page.Pagination})
}

type UpdatePostRequest struct {
	Caption *string `json:"caption"`
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Replace the caption and/or append media files. Only the author or an admin may edit.
// @Tags         posts
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        caption formData string false "New caption"
// @Param        media formData file false "Additional image or video files"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor := actorFrom(c)

	var input usecase.UpdatePostInput
	if c.ContentType() == "multipart/form-data" {
		uploads, err := mediaUploads(c)
		if err != nil {
			writeError(c, http.StatusBadRequest, "InvalidRequest", "Failed to parse form")
			return
		}
		input.Media = uploads
		if caption, ok := c.GetPostForm("caption"); ok {
			input.Caption = &caption
		}
	} else {
		var req UpdatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handleBindError(c, err)
			return
		}
		input.Caption = req.Caption
	}

	post, err := h.postUseCase.UpdatePost(requestContext(c), actor, c.Param("id"), input)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.formatPostResponse(post, actor))
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post and purge its media. Only the author or an admin may delete.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postUseCase.DeletePost(requestContext(c), actorFrom(c), c.Param("id")); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

type VisibilityRequest struct {
	IsHidden *bool `json:"isHidden" binding:"required"`
}

// SetVisibility godoc
// @Summary      Hide or unhide post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body VisibilityRequest true "Visibility"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/visibility [patch]
func (h *PostHandler) SetVisibility(c *gin.Context) {
	actor := actorFrom(c)

	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	post, err := h.postUseCase.SetHidden(requestContext(c), actor, c.Param("id"), *req.IsHidden)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.formatPostResponse(post, actor))
}

// RemoveMedia godoc
// @Summary      Remove one media item
// @Description  Deletes the stored file, then drops it from the post. Fails without changing the post if the file cannot be deleted.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        mediaId path string true "Media ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id}/media/{mediaId} [delete]
func (h *PostHandler) RemoveMedia(c *gin.Context) {
	actor := actorFrom(c)

	post, err := h.postUseCase.RemoveMedia(requestContext(c), actor, c.Param("id"), c.Param("mediaId"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.formatPostResponse(post, actor))
}
