package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"sangh-connect/pkg/logger"
	"sangh-connect/services/post/internal/entity"
	"sangh-connect/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, actor entity.Actor, input usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, actor entity.Actor, postID string) (*entity.Post, error) {
	args := m.Called(actor, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) (*entity.PostPage, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PostPage), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(ctx context.Context, actor entity.Actor, postID string, input usecase.UpdatePostInput) (*entity.Post, error) {
	args := m.Called(actor, postID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, actor entity.Actor, postID string) error {
	args := m.Called(actor, postID)
	return args.Error(0)
}

func (m *MockPostUseCase) SetHidden(ctx context.Context, actor entity.Actor, postID string, hidden bool) (*entity.Post, error) {
	args := m.Called(actor, postID, hidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) RemoveMedia(ctx context.Context, actor entity.Actor, postID, mediaID string) (*entity.Post, error) {
	args := m.Called(actor, postID, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ToggleLike(ctx context.Context, actor entity.Actor, postID string) (*usecase.LikeResult, error) {
	args := m.Called(actor, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LikeResult), args.Error(1)
}

func (m *MockPostUseCase) AddComment(ctx context.Context, actor entity.Actor, postID, text string) (*entity.Comment, int, error) {
	args := m.Called(actor, postID, text)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*entity.Comment), args.Int(1), args.Error(2)
}

func (m *MockPostUseCase) AddReply(ctx context.Context, actor entity.Actor, postID, commentID, text string) (*entity.Reply, int, error) {
	args := m.Called(actor, postID, commentID, text)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*entity.Reply), args.Int(1), args.Error(2)
}

func (m *MockPostUseCase) ListComments(ctx context.Context, actor entity.Actor, postID string, page, limit int) (*entity.CommentPage, error) {
	args := m.Called(actor, postID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CommentPage), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

type prefixRewriter struct{}

func (prefixRewriter) CDNURL(rawURL string) string {
	return strings.Replace(rawURL, "https://bucket.s3.amazonaws.com", "https://cdn.example.com", 1)
}

var testActor = entity.Actor{ID: "user-123", Role: "user"}

func setupTestRouter(handler *PostHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", testActor.ID)
		c.Set("role", testActor.Role)
		c.Next()
	})

	r.POST("/posts", handler.CreatePost)
	r.GET("/posts", handler.ListPosts)
	r.GET("/posts/:id", handler.GetPost)
	r.PUT("/posts/:id", handler.UpdatePost)
	r.DELETE("/posts/:id", handler.DeletePost)
	r.PATCH("/posts/:id/visibility", handler.SetVisibility)
	r.DELETE("/posts/:id/media/:mediaId", handler.RemoveMedia)
	r.POST("/posts/:id/like", handler.ToggleLike)
	r.POST("/posts/:id/comments", handler.AddComment)
	r.GET("/posts/:id/comments", handler.ListComments)
	r.POST("/posts/:id/comments/:commentId/replies", handler.AddReply)
	return r
}

func newTestHandler() (*MockPostUseCase, *gin.Engine) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, prefixRewriter{}, logger.New())
	return mockUseCase, setupTestRouter(handler)
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestCreatePost_CaptionOnly(t *testing.T) {
	mockUseCase, router := newTestHandler()

	created := &entity.Post{ID: "post-1", AuthorID: testActor.ID, Caption: "Hello", CreatedAt: time.Now()}
	mockUseCase.On("CreatePost", testActor, usecase.CreatePostInput{Caption: "Hello"}).Return(created, nil)

	w := doJSON(router, "POST", "/posts", `{"caption":"Hello"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decode(t, w)
	assert.Equal(t, "post-1", response["id"])
	assert.Equal(t, []interface{}{}, response["media"])
	assert.Equal(t, float64(0), response["likeCount"])
	assert.Equal(t, false, response["isLiked"])
	assert.NotContains(t, response, "sanghId")
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_MultipartWithMedia(t *testing.T) {
	mockUseCase, router := newTestHandler()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("caption", "Sabha photos"))
	require.NoError(t, writer.WriteField("sanghId", "s1"))
	require.NoError(t, writer.WriteField("postedAsRole", "president"))
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="media"; filename="sabha.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, writer.Close())

	created := &entity.Post{
		ID:           "post-1",
		AuthorID:     testActor.ID,
		SanghID:      "s1",
		PostedAsRole: "president",
		Caption:      "Sabha photos",
		Media: []entity.Media{{
			ID:   "m1",
			URL:  "https://bucket.s3.amazonaws.com/posts/user-123/1-a.jpg",
			Type: entity.MediaTypeImage,
			Key:  "posts/user-123/1-a.jpg",
		}},
	}
	mockUseCase.On("CreatePost", testActor, mock.MatchedBy(func(in usecase.CreatePostInput) bool {
		if len(in.Media) != 1 || in.Caption != "Sabha photos" || in.SanghID != "s1" || in.PostedAsRole != "president" {
			return false
		}
		return in.Media[0].Filename == "sabha.jpg" && in.Media[0].ContentType == "image/jpeg"
	})).Return(created, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decode(t, w)
	media := response["media"].([]interface{})
	require.Len(t, media, 1)
	item := media[0].(map[string]interface{})
	assert.Equal(t, "https://cdn.example.com/posts/user-123/1-a.jpg", item["url"])
	assert.NotContains(t, item, "key")
	assert.Equal(t, "s1", response["sanghId"])
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_Empty(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("CreatePost", testActor, usecase.CreatePostInput{}).
		Return(nil, entity.NewValidationError("caption", "post must have a caption or at least one media file"))

	w := doJSON(router, "POST", "/posts", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, "InvalidRequest", response["error"])
	assert.Equal(t, "caption", response["field"])
}

func TestGetPost(t *testing.T) {
	mockUseCase, router := newTestHandler()

	post := &entity.Post{
		ID:       "post-1",
		AuthorID: "author-1",
		Caption:  "Hello",
		Likes:    []string{"someone", testActor.ID},
		Media:    []entity.Media{{ID: "m1", URL: "https://elsewhere.example.org/a.jpg", Type: entity.MediaTypeImage}},
	}
	mockUseCase.On("GetPost", testActor, "post-1").Return(post, nil)
	mockUseCase.On("GetPost", testActor, "missing").Return(nil, entity.ErrPostNotFound)

	w := doJSON(router, "GET", "/posts/post-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, true, response["isLiked"])
	assert.Equal(t, float64(2), response["likeCount"])
	media := response["media"].([]interface{})
	assert.Equal(t, "https://elsewhere.example.org/a.jpg", media[0].(map[string]interface{})["url"])

	w = doJSON(router, "GET", "/posts/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PostNotFound", decode(t, w)["error"])
}

func TestListPosts(t *testing.T) {
	mockUseCase, router := newTestHandler()

	page := &entity.PostPage{
		Posts: []entity.Post{
			{ID: "p2", AuthorID: "a", Likes: []string{testActor.ID}},
			{ID: "p1", AuthorID: "b"},
		},
		Pagination: entity.Pagination{Total: 12, Page: 2, Pages: 2},
	}
	mockUseCase.On("ListPosts", entity.PostFilter{SanghID: "s1", Page: 2, Limit: 10}).Return(page, nil)

	w := doJSON(router, "GET", "/posts?page=2&limit=10&sanghId=s1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	posts := response["posts"].([]interface{})
	require.Len(t, posts, 2)
	assert.Equal(t, true, posts[0].(map[string]interface{})["isLiked"])
	assert.Equal(t, false, posts[1].(map[string]interface{})["isLiked"])
	assert.Equal(t, map[string]interface{}{"total": float64(12), "page": float64(2), "pages": float64(2)}, response["pagination"])
}

func TestListPosts_InvalidLimit(t *testing.T) {
	mockUseCase, router := newTestHandler()

	w := doJSON(router, "GET", "/posts?limit=500", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, "limit must be at most 50", response["message"])
	mockUseCase.AssertNotCalled(t, "ListPosts", mock.Anything)
}

func TestUpdatePost_JSONCaption(t *testing.T) {
	mockUseCase, router := newTestHandler()

	caption := "New caption"
	updated := &entity.Post{ID: "post-1", AuthorID: testActor.ID, Caption: caption}
	mockUseCase.On("UpdatePost", testActor, "post-1", usecase.UpdatePostInput{Caption: &caption}).Return(updated, nil)

	w := doJSON(router, "PUT", "/posts/post-1", `{"caption":"New caption"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New caption", decode(t, w)["caption"])
	mockUseCase.AssertExpectations(t)
}

func TestDeletePost(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("DeletePost", testActor, "mine").Return(nil)
	mockUseCase.On("DeletePost", testActor, "theirs").Return(entity.ErrNotAuthorized)

	w := doJSON(router, "DELETE", "/posts/mine", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post deleted successfully", decode(t, w)["message"])

	w = doJSON(router, "DELETE", "/posts/theirs", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NotAuthorized", decode(t, w)["error"])
}

func TestSetVisibility(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("SetHidden", testActor, "post-1", true).Return(&entity.Post{ID: "post-1", IsHidden: true}, nil)

	w := doJSON(router, "PATCH", "/posts/post-1/visibility", `{"isHidden":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["isHidden"])

	w = doJSON(router, "PATCH", "/posts/post-1/visibility", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "isHidden is required", decode(t, w)["message"])
	mockUseCase.AssertNumberOfCalls(t, "SetHidden", 1)
}

func TestRemoveMedia_StorageFailure(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("RemoveMedia", testActor, "post-1", "m1").
		Return(nil, entity.NewStorageError("delete media", errors.New("AccessDenied: bucket policy")))

	w := doJSON(router, "DELETE", "/posts/post-1/media/m1", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decode(t, w)
	assert.Equal(t, "StorageError", response["error"])
	assert.NotContains(t, response["message"], "AccessDenied")
}

func TestToggleLike(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("ToggleLike", testActor, "post-1").Return(&usecase.LikeResult{IsLiked: true, LikeCount: 1}, nil).Once()
	mockUseCase.On("ToggleLike", testActor, "post-1").Return(&usecase.LikeResult{IsLiked: false, LikeCount: 0}, nil).Once()
	mockUseCase.On("ToggleLike", testActor, "missing").Return(nil, entity.ErrPostNotFound)

	w := doJSON(router, "POST", "/posts/post-1/like", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isLiked":true,"likeCount":1}`, w.Body.String())

	w = doJSON(router, "POST", "/posts/post-1/like", "")
	assert.JSONEq(t, `{"isLiked":false,"likeCount":0}`, w.Body.String())

	w = doJSON(router, "POST", "/posts/missing/like", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddComment(t *testing.T) {
	mockUseCase, router := newTestHandler()
	comment := &entity.Comment{ID: "c1", AuthorID: testActor.ID, Text: "Nice!", Replies: []entity.Reply{}}
	mockUseCase.On("AddComment", testActor, "post-1", "Nice!").Return(comment, 1, nil)

	w := doJSON(router, "POST", "/posts/post-1/comments", `{"text":"Nice!"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(1), response["commentCount"])
	assert.Equal(t, "Nice!", response["comment"].(map[string]interface{})["text"])
}

func TestAddComment_MissingText(t *testing.T) {
	mockUseCase, router := newTestHandler()

	w := doJSON(router, "POST", "/posts/post-1/comments", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, "InvalidRequest", response["error"])
	assert.Equal(t, "text is required", response["message"])
	mockUseCase.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddReply(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("AddReply", testActor, "post-1", "c1", "Thanks").Return(&entity.Reply{ID: "r1", Text: "Thanks"}, 1, nil)
	mockUseCase.On("AddReply", testActor, "post-1", "nope", "Thanks").Return(nil, 0, entity.ErrCommentNotFound)

	w := doJSON(router, "POST", "/posts/post-1/comments/c1/replies", `{"text":"Thanks"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["replyCount"])

	w = doJSON(router, "POST", "/posts/post-1/comments/nope/replies", `{"text":"Thanks"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CommentNotFound", decode(t, w)["error"])
}

func TestListComments(t *testing.T) {
	mockUseCase, router := newTestHandler()
	page := &entity.CommentPage{
		Comments:   []entity.Comment{{ID: "c1", Text: "Nice!", Replies: []entity.Reply{}}},
		Pagination: entity.Pagination{Total: 1, Page: 1, Pages: 1},
	}
	mockUseCase.On("ListComments", testActor, "post-1", 1, 5).Return(page, nil)

	w := doJSON(router, "GET", "/posts/post-1/comments?page=1&limit=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Len(t, response["comments"], 1)
}

func TestUnexpectedErrorIsNotLeaked(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("GetPost", testActor, "post-1").Return(nil, errors.New("connection refused: mongo-0.internal:27017"))

	w := doJSON(router, "GET", "/posts/post-1", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"InternalServerError","message":"An internal error occurred"}`, w.Body.String())
}

func TestUnauthenticated(t *testing.T) {
	mockUseCase, router := newTestHandler()
	mockUseCase.On("ToggleLike", testActor, "post-1").Return(nil, entity.ErrUnauthenticated)

	w := doJSON(router, "POST", "/posts/post-1/like", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListPosts_PageTooLarge(t *testing.T) {
	mockUseCase, router := newTestHandler()

	w := doJSON(router, "GET", "/posts?page=4611686018427387905", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, "page must be at most 100000", response["message"])
	mockUseCase.AssertNotCalled(t, "ListPosts", mock.Anything)
}

func TestListComments_PageTooLarge(t *testing.T) {
	mockUseCase, router := newTestHandler()

	w := doJSON(router, "GET", "/posts/post-1/comments?page=4611686018427387905", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
