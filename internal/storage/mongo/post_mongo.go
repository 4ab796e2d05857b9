package mongo

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostMongo struct {
	coll *mongo.Collection
}

func NewPostMongo(s *Storage) *PostMongo {
	return &PostMongo{coll: s.DB.Collection(postsCollection)}
}

func (r *PostMongo) NewPost(ctx context.Context, post *models.Post) (primitive.ObjectID, error) {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Saves == nil {
		post.Saves = []primitive.ObjectID{}
	}

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert post: %w", err)
	}
	return post.ID, nil
}

func (r *PostMongo) PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// UpdateContent replaces caption, hashtags and media; likes, saves and the
// comment counter are left alone.
func (r *PostMongo) UpdateContent(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, post.ID, bson.M{"$set": bson.M{
		"caption":    post.Caption,
		"hashtags":   post.Hashtags,
		"media":      post.Media,
		"updated_at": post.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return app_errors.ErrPostNotFound
	}
	return nil
}

func (r *PostMongo) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return app_errors.ErrPostNotFound
	}
	return nil
}

// ListPosts returns posts newest first.
func (r *PostMongo) ListPosts(ctx context.Context, f models.FeedFilter) ([]models.Post, error) {
	filter := bson.M{}
	switch {
	case f.AuthorIDs != nil:
		filter["author_id"] = bson.M{"$in": f.AuthorIDs}
	case f.Hashtag != "":
		filter["hashtags"] = f.Hashtag
	}
	if !f.SavedBy.IsZero() {
		filter["saves"] = f.SavedBy
	}

	opts := pageOptions(f.Limit, f.Offset).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *PostMongo) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// SetMembership adds or removes userID from the likes or saves set in one
// atomic update and reports the resulting set size.
func (r *PostMongo) SetMembership(ctx context.Context, postID primitive.ObjectID, field string, userID primitive.ObjectID, member bool) (models.ToggleResult, error) {
	if field != models.LikesField && field != models.SavesField {
		return models.ToggleResult{}, fmt.Errorf("unknown membership field %q", field)
	}
	op := "$pull"
	if member {
		op = "$addToSet"
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{field: 1})

	var out bson.M
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, bson.M{op: bson.M{field: userID}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ToggleResult{}, app_errors.ErrPostNotFound
		}
		return models.ToggleResult{}, fmt.Errorf("update %s: %w", field, err)
	}
	count := 0
	if arr, ok := out[field].(bson.A); ok {
		count = len(arr)
	}
	return models.ToggleResult{Active: member, Count: count}, nil
}

func (r *PostMongo) IncrementComments(ctx context.Context, postID primitive.ObjectID, delta int) error {
	if _, err := r.coll.UpdateByID(ctx, postID, bson.M{"$inc": bson.M{"comments_count": delta}}); err != nil {
		return fmt.Errorf("increment comments: %w", err)
	}
	return nil
}
