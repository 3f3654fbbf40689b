package usecase

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"sangh-connect/pkg/cache"
	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/queue"
	"sangh-connect/services/post/internal/entity"
	"sangh-connect/services/post/internal/repo/persistent"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
	maxPageNumber    = 100000
	previewLength    = 80
)

// EventPublisher emits engagement notifications. Publish must not block on delivery.
type EventPublisher interface {
	Publish(event queue.Event) error
}

type CreatePostInput struct {
	Caption      string
	SanghID      string
	PostedAsRole string
	Media        []MediaUpload
}

type UpdatePostInput struct {
	Caption *string
	Media   []MediaUpload
}

type LikeResult struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

type PostUseCase interface {
	CreatePost(ctx context.Context, actor entity.Actor, input CreatePostInput) (*entity.Post, error)
	GetPost(ctx context.Context, actor entity.Actor, postID string) (*entity.Post, error)
	ListPosts(ctx context.Context, filter entity.PostFilter) (*entity.PostPage, error)
	UpdatePost(ctx context.Context, actor entity.Actor, postID string, input UpdatePostInput) (*entity.Post, error)
	DeletePost(ctx context.Context, actor entity.Actor, postID string) error
	SetHidden(ctx context.Context, actor entity.Actor, postID string, hidden bool) (*entity.Post, error)
	RemoveMedia(ctx context.Context, actor entity.Actor, postID, mediaID string) (*entity.Post, error)
	ToggleLike(ctx context.Context, actor entity.Actor, postID string) (*LikeResult, error)
	AddComment(ctx context.Context, actor entity.Actor, postID, text string) (*entity.Comment, int, error)
	AddReply(ctx context.Context, actor entity.Actor, postID, commentID, text string) (*entity.Reply, int, error)
	ListComments(ctx context.Context, actor entity.Actor, postID string, page, limit int) (*entity.CommentPage, error)
}

type Options struct {
	PostTTL time.Duration
	ListTTL time.Duration
	Limits  entity.Limits
}

type postUseCase struct {
	postRepo  persistent.PostRepository
	sanghRepo persistent.SanghRepository
	media     MediaStore
	store     *cache.Store
	publisher EventPublisher
	opts      Options
	logger    *logger.Logger
	now       func() time.Time
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	sanghRepo persistent.SanghRepository,
	media MediaStore,
	store *cache.Store,
	publisher EventPublisher,
	opts Options,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:  postRepo,
		sanghRepo: sanghRepo,
		media:     media,
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *postUseCase) CreatePost(ctx context.Context, actor entity.Actor, input CreatePostInput) (*entity.Post, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}

	caption, err := entity.NormalizeText("caption", input.Caption, uc.opts.Limits.CaptionMaxLength, false)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateContent(caption, len(input.Media), uc.opts.Limits.MaxMediaPerPost); err != nil {
		return nil, err
	}

	if input.SanghID != "" {
		if err := uc.checkSanghPosting(ctx, actor, input.SanghID, input.PostedAsRole); err != nil {
			return nil, err
		}
	}

	media, err := uc.uploadAll(actor.ID, input.Media)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	post := &entity.Post{
		AuthorID:     actor.ID,
		SanghID:      input.SanghID,
		PostedAsRole: input.PostedAsRole,
		Caption:      caption,
		Media:        media,
		Likes:        []string{},
		Comments:     []entity.Comment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		uc.logger.Error("Failed to create post for author=%s: %v", actor.ID, err)
		uc.discardMedia(media)
		return nil, entity.NewStorageError("create post", err)
	}

	uc.invalidate(ctx, post)
	uc.logger.Info("Post %s created by %s with %d media", post.ID, actor.ID, len(post.Media))
	return post, nil
}

func (uc *postUseCase) checkSanghPosting(ctx context.Context, actor entity.Actor, sanghID, role string) error {
	exists, err := uc.sanghRepo.Exists(ctx, sanghID)
	if err != nil {
		return err
	}
	if !exists {
		return entity.ErrSanghNotFound
	}

	if actor.IsPrivileged() {
		return nil
	}
	if role == "" {
		return entity.NewValidationError("postedAsRole", "postedAsRole is required when posting for a sangh")
	}

	allowed, err := uc.sanghRepo.CanPostAs(ctx, sanghID, actor.ID, role)
	if err != nil {
		return err
	}
	if !allowed {
		return entity.ErrNotAuthorized
	}
	return nil
}

func (uc *postUseCase) GetPost(ctx context.Context, actor entity.Actor, postID string) (*entity.Post, error) {
	post, err := cache.GetOrSet(ctx, uc.store, postCacheKey(postID), uc.opts.PostTTL,
		func(ctx context.Context) (*entity.Post, error) {
			return uc.postRepo.GetByID(ctx, postID)
		})
	if err != nil {
		return nil, err
	}

	if !post.VisibleTo(actor) {
		return nil, entity.ErrPostNotFound
	}
	return post, nil
}

func (uc *postUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) (*entity.PostPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	page, err := cache.GetOrSet(ctx, uc.store, listCacheKey(filter), uc.opts.ListTTL,
		func(ctx context.Context) (entity.PostPage, error) {
			posts, total, err := uc.postRepo.List(ctx, filter)
			if err != nil {
				return entity.PostPage{}, err
			}
			return entity.PostPage{
				Posts:      posts,
				Pagination: entity.NewPagination(total, filter.Page, filter.Limit),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, actor entity.Actor, postID string, input UpdatePostInput) (*entity.Post, error) {
	post, err := uc.loadManageable(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	caption := post.Caption
	if input.Caption != nil {
		caption, err = entity.NormalizeText("caption", *input.Caption, uc.opts.Limits.CaptionMaxLength, false)
		if err != nil {
			return nil, err
		}
	}
	if err := entity.ValidateContent(caption, len(post.Media)+len(input.Media), uc.opts.Limits.MaxMediaPerPost); err != nil {
		return nil, err
	}

	added, err := uc.uploadAll(actor.ID, input.Media)
	if err != nil {
		return nil, err
	}

	post.Caption = caption
	post.Media = append(post.Media, added...)
	post.UpdatedAt = uc.now()

	if err := uc.postRepo.Save(ctx, post); err != nil {
		uc.logger.Error("Failed to update post %s: %v", postID, err)
		uc.discardMedia(added)
		if entity.IsNotFound(err) {
			return nil, err
		}
		return nil, entity.NewStorageError("update post", err)
	}

	uc.invalidate(ctx, post)
	return post, nil
}

// DeletePost removes the document first; media cleanup afterwards never fails the call.
func (uc *postUseCase) DeletePost(ctx context.Context, actor entity.Actor, postID string) error {
	post, err := uc.loadManageable(ctx, actor, postID)
	if err != nil {
		return err
	}

	if err := uc.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if err := uc.purgeMedia(post.Media); err != nil {
		uc.logger.Warn("[MEDIA] Post %s deleted but some media could not be removed: %v", postID, err)
	}

	uc.invalidate(ctx, post)
	uc.logger.Info("Post %s deleted by %s", postID, actor.ID)
	return nil
}

func (uc *postUseCase) SetHidden(ctx context.Context, actor entity.Actor, postID string, hidden bool) (*entity.Post, error) {
	post, err := uc.loadManageable(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	if err := uc.postRepo.SetHidden(ctx, postID, hidden); err != nil {
		return nil, err
	}
	post.IsHidden = hidden

	uc.invalidate(ctx, post)
	return post, nil
}

// RemoveMedia deletes the blob before the reference, so a failed blob delete
// leaves the post untouched.
func (uc *postUseCase) RemoveMedia(ctx context.Context, actor entity.Actor, postID, mediaID string) (*entity.Post, error) {
	post, err := uc.loadManageable(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	item, err := post.FindMedia(mediaID)
	if err != nil {
		return nil, err
	}

	if err := uc.media.DeleteFile(item.Key); err != nil {
		uc.logger.Error("[MEDIA] Failed to delete %s of post %s: %v", item.Key, postID, err)
		return nil, entity.NewStorageError("delete media", err)
	}

	if err := uc.postRepo.PullMedia(ctx, postID, mediaID); err != nil {
		return nil, err
	}
	post.RemoveMedia(mediaID)

	uc.invalidate(ctx, post)
	return post, nil
}

func (uc *postUseCase) ToggleLike(ctx context.Context, actor entity.Actor, postID string) (*LikeResult, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}

	post, err := uc.loadVisible(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	isLiked, likeCount := post.ToggleLike(actor.ID)
	if err := uc.postRepo.Save(ctx, post); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, post)

	if isLiked && actor.ID != post.AuthorID {
		uc.notify(queue.Event{
			Type:        queue.EventPostLike,
			RecipientID: post.AuthorID,
			ActorID:     actor.ID,
			PostID:      post.ID,
			Priority:    3,
		})
	}

	return &LikeResult{IsLiked: isLiked, LikeCount: likeCount}, nil
}

func (uc *postUseCase) AddComment(ctx context.Context, actor entity.Actor, postID, text string) (*entity.Comment, int, error) {
	if actor.ID == "" {
		return nil, 0, entity.ErrUnauthenticated
	}

	text, err := entity.NormalizeText("text", text, uc.opts.Limits.CommentMaxLength, true)
	if err != nil {
		return nil, 0, err
	}

	post, err := uc.loadVisible(ctx, actor, postID)
	if err != nil {
		return nil, 0, err
	}

	comment := post.AddComment(actor.ID, text, uc.now())
	if err := uc.postRepo.Save(ctx, post); err != nil {
		return nil, 0, err
	}
	uc.invalidate(ctx, post)

	if actor.ID != post.AuthorID {
		uc.notify(queue.Event{
			Type:        queue.EventPostComment,
			RecipientID: post.AuthorID,
			ActorID:     actor.ID,
			PostID:      post.ID,
			CommentID:   comment.ID,
			Preview:     preview(text),
			Priority:    5,
		})
	}

	return &comment, post.CommentCount(), nil
}

func (uc *postUseCase) AddReply(ctx context.Context, actor entity.Actor, postID, commentID, text string) (*entity.Reply, int, error) {
	if actor.ID == "" {
		return nil, 0, entity.ErrUnauthenticated
	}

	text, err := entity.NormalizeText("text", text, uc.opts.Limits.ReplyMaxLength, true)
	if err != nil {
		return nil, 0, err
	}

	post, err := uc.loadVisible(ctx, actor, postID)
	if err != nil {
		return nil, 0, err
	}

	reply, comment, err := post.AddReply(commentID, actor.ID, text, uc.now())
	if err != nil {
		return nil, 0, err
	}
	replyCount := len(comment.Replies)
	if err := uc.postRepo.Save(ctx, post); err != nil {
		return nil, 0, err
	}
	uc.invalidate(ctx, post)

	if actor.ID != comment.AuthorID {
		uc.notify(queue.Event{
			Type:        queue.EventCommentReply,
			RecipientID: comment.AuthorID,
			ActorID:     actor.ID,
			PostID:      post.ID,
			CommentID:   commentID,
			ReplyID:     reply.ID,
			Preview:     preview(text),
			Priority:    5,
		})
	}

	return &reply, replyCount, nil
}

func (uc *postUseCase) ListComments(ctx context.Context, actor entity.Actor, postID string, page, limit int) (*entity.CommentPage, error) {
	post, err := uc.GetPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	total := len(post.Comments)
	start := entity.PostFilter{Page: page, Limit: limit}.Offset()
	if start > total {
		start = total
	}
	end := total
	if limit < total-start {
		end = start + limit
	}

	return &entity.CommentPage{
		Comments:   append([]entity.Comment{}, post.Comments[start:end]...),
		Pagination: entity.NewPagination(int64(len(post.Comments)), page, limit),
	}, nil
}

// loadVisible reads the post from the store, bypassing the cache, and hides it
// from actors who may not see it.
func (uc *postUseCase) loadVisible(ctx context.Context, actor entity.Actor, postID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actor) {
		return nil, entity.ErrPostNotFound
	}
	return post, nil
}

func (uc *postUseCase) loadManageable(ctx context.Context, actor entity.Actor, postID string) (*entity.Post, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}

	post, err := uc.loadVisible(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	if !post.CanManage(actor) {
		return nil, entity.ErrNotAuthorized
	}
	return post, nil
}

// invalidate drops the single-post entry and sweeps every listing that may hold the post.
// Listings under keys outside these patterns stay stale until their TTL runs out.
func (uc *postUseCase) invalidate(ctx context.Context, post *entity.Post) {
	if err := uc.store.Invalidate(ctx, postCacheKey(post.ID)); err != nil {
		uc.logger.Warn("[CACHE] Failed to invalidate post %s: %v", post.ID, err)
	}

	for _, pattern := range listPatternsFor(post) {
		if _, err := uc.store.InvalidatePattern(ctx, pattern); err != nil {
			uc.logger.Warn("[CACHE] Failed to sweep %s: %v", pattern, err)
		}
	}
}

func (uc *postUseCase) notify(event queue.Event) {
	if uc.publisher == nil {
		return
	}
	event.OccurredAt = uc.now()

	go func() {
		uc.logger.Info("[NOTIFICATION QUEUE] Publishing %s: post_id=%s, recipient=%s", event.Type, event.PostID, event.RecipientID)
		if err := uc.publisher.Publish(event); err != nil {
			uc.logger.Error("[NOTIFICATION QUEUE] Failed to publish %s: %v (post_id=%s, recipient=%s)", event.Type, err, event.PostID, event.RecipientID)
		}
	}()
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPageNumber {
		page = maxPageNumber
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return fmt.Sprintf("%s...", string(runes[:previewLength]))
}
