package mongo

import (
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

type RatingMongo struct {
	coll *mongo.Collection
}

func NewRatingMongo(s *Storage) *RatingMongo {
	return &RatingMongo{coll: s.DB.Collection(ratingsCollection)}
}

// UpsertRating keeps a single rating per (course, user).
func (r *RatingMongo) UpsertRating(ctx context.Context, courseID, userID primitive.ObjectID, value int) (*models.CourseRating, error) {
	now := time.Now().UTC()
	filter := bson.M{"course_id": courseID, "user_id": userID}
	update := bson.M{
		"$set":         bson.M{"value": value, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rating models.CourseRating
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rating); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return &rating, nil
}

// RatingStats returns the average value and number of ratings of a course.
func (r *RatingMongo) RatingStats(ctx context.Context, courseID primitive.ObjectID) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"course_id": courseID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$value"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate ratings: %w", err)
	}
	var out []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, 0, fmt.Errorf("decode rating stats: %w", err)
	}
	if len(out) == 0 {
		return 0, 0, nil
	}
	return out[0].Avg, out[0].Count, nil
}

func (r *RatingMongo) UserRating(ctx context.Context, courseID, userID primitive.ObjectID) (int, error) {
	var rating models.CourseRating
	err := r.coll.FindOne(ctx, bson.M{"course_id": courseID, "user_id": userID}).Decode(&rating)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find rating: %w", err)
	}
	return rating.Value, nil
}

func (r *RatingMongo) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"course_id": courseID}); err != nil {
		return fmt.Errorf("delete ratings: %w", err)
	}
	return nil
}
