package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Tags         engagement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  usecase.LikeResult
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/like [post]
func (h *PostHandler) ToggleLike(c *gin.Context) {
	result, err := h.postUseCase.ToggleLike(requestContext(c), actorFrom(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment godoc
// @Summary      Comment on a post
// @Tags         engagement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body TextRequest true "Comment"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	comment, commentCount, err := h.postUseCase.AddComment(requestContext(c), actorFrom(c), c.Param("id"), req.Text)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment, "commentCount": commentCount})
}

type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// ListComments godoc
// @Summary      List comments of a post
// @Tags         engagement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        page query int false "Page number (default 1)"
// @Param        limit query int false "Page size (default 10, max 50)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *gin.Context) {
	var query PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}

	page, err := h.postUseCase.ListComments(requestContext(c), actorFrom(c), c.Param("id"), query.Page, query.Limit)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// AddReply godoc
// @Summary      Reply to a comment
// @Tags         engagement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        commentId path string true "Comment ID"
// @Param        request body TextRequest true "Reply"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/comments/{commentId}/replies [post]
func (h *PostHandler) AddReply(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	reply, replyCount, err := h.postUseCase.AddReply(requestContext(c), actorFrom(c), c.Param("id"), c.Param("commentId"), req.Text)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply, "replyCount": replyCount})
}
