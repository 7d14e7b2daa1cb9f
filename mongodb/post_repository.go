package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openlore/crosspost/domain"
)

// PostRepository implements domain.PostRepository on MongoDB.
type PostRepository struct {
	posts *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{posts: db.Collection(PostsCollection)}
}

func (r *PostRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post %s not found", id)
		}
		return nil, fmt.Errorf("failed to load post %s: %w", id, err)
	}
	return &post, nil
}

// UpdateDenormalizedData overwrites exactly the denormalized field set. A
// partial $set keeps every other field untouched.
func (r *PostRepository) UpdateDenormalizedData(ctx context.Context, postID string, data domain.DenormalizedCrosspostData) error {
	_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$set": bson.M{
			"title":         data.Title,
			"draft":         data.Draft,
			"deleted_draft": data.DeletedDraft,
			"updated_at":    time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update denormalized data on post %s: %w", postID, err)
	}
	return nil
}

func (r *PostRepository) SetForeignPostID(ctx context.Context, postID, foreignPostID string) error {
	_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$set": bson.M{
			"crosspost.foreign_post_id": foreignPostID,
			"updated_at":                time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to record mirror id on post %s: %w", postID, err)
	}
	return nil
}
