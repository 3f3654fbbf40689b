package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sangh-connect/services/post/internal/entity"
	"sangh-connect/services/post/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	List(ctx context.Context, filter entity.PostFilter) ([]entity.Post, int64, error)
	// Save replaces the whole document; concurrent saves are last-write-wins.
	Save(ctx context.Context, post *entity.Post) error
	SetHidden(ctx context.Context, id string, hidden bool) error
	PullMedia(ctx context.Context, id, mediaID string) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	collection *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{collection: db.Collection(model.PostCollection)}
}

// EnsureIndexes creates the indexes backing the listing queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(model.PostCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isHidden", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sanghId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel, err := ToPostModel(post)
	if err != nil {
		return err
	}
	postModel.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, postModel); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	post.ID = postModel.ID.Hex()
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrPostNotFound
	}

	var postModel model.PostModel
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&postModel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post %s: %w", id, err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) List(ctx context.Context, filter entity.PostFilter) ([]entity.Post, int64, error) {
	query := bson.M{"isHidden": false}
	if filter.SanghID != "" {
		query["sanghId"] = filter.SanghID
	}
	if filter.AuthorID != "" {
		query["authorId"] = filter.AuthorID
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	findOptions := options.Find().
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var models []model.PostModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, 0, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]entity.Post, 0, len(models))
	for i := range models {
		posts = append(posts, *ToPostEntity(&models[i]))
	}
	return posts, total, nil
}

func (r *postRepository) Save(ctx context.Context, post *entity.Post) error {
	postModel, err := ToPostModel(post)
	if err != nil {
		return err
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": postModel.ID}, postModel)
	if err != nil {
		return fmt.Errorf("failed to save post %s: %w", post.ID, err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"isHidden": hidden, "updatedAt": time.Now().UTC()},
	})
}

func (r *postRepository) PullMedia(ctx context.Context, id, mediaID string) error {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"media": bson.M{"id": mediaID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return entity.ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return entity.ErrPostNotFound
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}
