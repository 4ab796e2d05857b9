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

type YouTubeCourseMongo struct {
	coll *mongo.Collection
}

func NewYouTubeCourseMongo(s *Storage) *YouTubeCourseMongo {
	return &YouTubeCourseMongo{coll: s.DB.Collection(youtubeCoursesCollection)}
}

func (r *YouTubeCourseMongo) NewYouTubeCourse(ctx context.Context, course *models.YouTubeCourse) (primitive.ObjectID, error) {
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, course); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, app_errors.ErrSlugTaken
		}
		return primitive.NilObjectID, fmt.Errorf("insert youtube course: %w", err)
	}
	return course.ID, nil
}

func (r *YouTubeCourseMongo) YouTubeCourseByID(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error) {
	var c models.YouTubeCourse
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find youtube course: %w", err)
	}
	return &c, nil
}

func (r *YouTubeCourseMongo) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count slug: %w", err)
	}
	return n > 0, nil
}

func (r *YouTubeCourseMongo) ReplaceYouTubeCourse(ctx context.Context, course *models.YouTubeCourse) error {
	prev := course.UpdatedAt
	course.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update, err := updateDoc(course, []string{"published_at"},
		"_id", "created_at", "stats.students_count", "stats.rating", "stats.ratings_count")
	if err != nil {
		course.UpdatedAt = prev
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": course.ID, "updated_at": prev}, update)
	if err != nil {
		course.UpdatedAt = prev
		return fmt.Errorf("replace youtube course: %w", err)
	}
	if res.MatchedCount == 0 {
		course.UpdatedAt = prev
		if _, err := r.YouTubeCourseByID(ctx, course.ID); err != nil {
			return err
		}
		return app_errors.ErrConflict
	}
	return nil
}

func (r *YouTubeCourseMongo) DeleteYouTubeCourse(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete youtube course: %w", err)
	}
	if res.DeletedCount == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *YouTubeCourseMongo) ListYouTubeCourses(ctx context.Context, f models.CourseFilter) ([]models.YouTubeCourse, int, error) {
	filter := courseFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count youtube courses: %w", err)
	}

	opts := pageOptions(f.Limit, f.Offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"modules": 0})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list youtube courses: %w", err)
	}
	courses := []models.YouTubeCourse{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, 0, fmt.Errorf("decode youtube courses: %w", err)
	}
	return courses, int(total), nil
}
