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

type CommentMongo struct {
	coll *mongo.Collection
}

func NewCommentMongo(s *Storage) *CommentMongo {
	return &CommentMongo{coll: s.DB.Collection(commentsCollection)}
}

func (r *CommentMongo) NewComment(ctx context.Context, c *models.Comment) (primitive.ObjectID, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert comment: %w", err)
	}
	return c.ID, nil
}

func (r *CommentMongo) CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &c, nil
}

// CommentsByPost returns the flat comment list of a post, oldest first.
func (r *CommentMongo) CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	list := []models.Comment{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return list, nil
}

func (r *CommentMongo) DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return int(res.DeletedCount), nil
}

func (r *CommentMongo) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"post_id": postID}); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	return nil
}
