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

type ProgressMongo struct {
	coll *mongo.Collection
}

func NewProgressMongo(s *Storage) *ProgressMongo {
	return &ProgressMongo{coll: s.DB.Collection(progressCollection)}
}

// NewProgress enrolls the user. A second enrollment fails with
// ErrAlreadyEnrolled through the unique (user_id, course_id) index.
func (r *ProgressMongo) NewProgress(ctx context.Context, p *models.UserProgress) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	p.EnrolledAt = now
	p.LastAccessedAt = now
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return app_errors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func (r *ProgressMongo) Progress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	var p models.UserProgress
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "course_id": courseID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrNotEnrolled
		}
		return nil, fmt.Errorf("find progress: %w", err)
	}
	return &p, nil
}

func (r *ProgressMongo) ProgressByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserProgress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_accessed_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	list := []models.UserProgress{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return list, nil
}

// MarkLesson adds or removes lessonID from the completed set and returns the
// updated document.
func (r *ProgressMongo) MarkLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, completed bool) (*models.UserProgress, error) {
	op := "$pull"
	if completed {
		op = "$addToSet"
	}
	update := bson.M{
		op:     bson.M{"completed_lessons": lessonID},
		"$set": bson.M{"last_accessed_at": time.Now().UTC()},
	}
	return r.findAndUpdate(ctx, userID, courseID, update)
}

func (r *ProgressMongo) SetCurrentLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) (*models.UserProgress, error) {
	update := bson.M{"$set": bson.M{
		"current_lesson_id": lessonID,
		"last_accessed_at":  time.Now().UTC(),
	}}
	return r.findAndUpdate(ctx, userID, courseID, update)
}

func (r *ProgressMongo) ResetProgress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	update := bson.M{
		"$set": bson.M{
			"completed_lessons": []string{},
			"progress":          0.0,
			"last_accessed_at":  time.Now().UTC(),
		},
		"$unset": bson.M{"current_lesson_id": "", "completed_at": ""},
	}
	return r.findAndUpdate(ctx, userID, courseID, update)
}

// SetProgressState persists the derived fraction and completion time.
func (r *ProgressMongo) SetProgressState(ctx context.Context, id primitive.ObjectID, progress float64, completedAt *time.Time) error {
	update := bson.M{"$set": bson.M{"progress": progress}}
	if completedAt != nil {
		update["$set"].(bson.M)["completed_at"] = *completedAt
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}
	if _, err := r.coll.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func (r *ProgressMongo) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"course_id": courseID}); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (r *ProgressMongo) findAndUpdate(ctx context.Context, userID, courseID primitive.ObjectID, update bson.M) (*models.UserProgress, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.UserProgress
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user_id": userID, "course_id": courseID}, update, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrNotEnrolled
		}
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return &p, nil
}
