package mongo

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CourseMongo struct {
	coll *mongo.Collection
}

func NewCourseMongo(s *Storage) *CourseMongo {
	return &CourseMongo{coll: s.DB.Collection(coursesCollection)}
}

func (r *CourseMongo) NewCourse(ctx context.Context, course *models.Course) (primitive.ObjectID, error) {
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
		return primitive.NilObjectID, fmt.Errorf("insert course: %w", err)
	}
	return course.ID, nil
}

func (r *CourseMongo) CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CourseMongo) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *CourseMongo) findOne(ctx context.Context, filter bson.M) (*models.Course, error) {
	var c models.Course
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &c, nil
}

func (r *CourseMongo) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count slug: %w", err)
	}
	return n > 0, nil
}

// ReplaceCourse writes the whole document if it has not changed since it was
// read, detected through updated_at. Stats counters owned by enrollment and
// rating are preserved.
func (r *CourseMongo) ReplaceCourse(ctx context.Context, course *models.Course) error {
	prev := course.UpdatedAt
	course.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update, err := updateDoc(course, courseOptionalKeys,
		"_id", "created_at", "stats.students_count", "stats.rating", "stats.ratings_count")
	if err != nil {
		course.UpdatedAt = prev
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": course.ID, "updated_at": prev}, update)
	if err != nil {
		course.UpdatedAt = prev
		return fmt.Errorf("replace course: %w", err)
	}
	if res.MatchedCount == 0 {
		course.UpdatedAt = prev
		if _, err := r.CourseByID(ctx, course.ID); err != nil {
			return err
		}
		return app_errors.ErrConflict
	}
	return nil
}

func (r *CourseMongo) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CourseMongo) ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, error) {
	opts := pageOptions(f.Limit, f.Offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"modules": 0})

	cur, err := r.coll.Find(ctx, courseFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses := []models.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}

func (r *CourseMongo) CountCourses(ctx context.Context, f models.CourseFilter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, courseFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return int(n), nil
}

func (r *CourseMongo) IncrementStudents(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"stats.students_count": delta}})
	if err != nil {
		return fmt.Errorf("increment students: %w", err)
	}
	if res.MatchedCount == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CourseMongo) SetRatingStats(ctx context.Context, id primitive.ObjectID, rating float64, count int) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"stats.rating":        rating,
		"stats.ratings_count": count,
	}})
	if err != nil {
		return fmt.Errorf("set rating stats: %w", err)
	}
	if res.MatchedCount == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func courseFilter(f models.CourseFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.AuthorID.IsZero() {
		filter["author_id"] = f.AuthorID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Level != "" {
		filter["level"] = f.Level
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Query != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	return filter
}

var courseOptionalKeys = []string{"discount_price", "thumbnail_key", "preview_video_key", "published_at"}

// updateDoc flattens v into a $set document without the skip keys. Dotted
// skip keys drop a nested field while keeping its siblings. optional keys
// that v omits are $unset.
func updateDoc(v any, optional []string, skip ...string) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	set := bson.M{}
	nested := map[string][]string{}
	for _, k := range skip {
		if parent, child, ok := strings.Cut(k, "."); ok {
			nested[parent] = append(nested[parent], child)
			continue
		}
		delete(doc, k)
	}
	for k, val := range doc {
		children, ok := nested[k]
		sub, isDoc := val.(bson.M)
		if !ok || !isDoc {
			set[k] = val
			continue
		}
		for _, c := range children {
			delete(sub, c)
		}
		for sk, sv := range sub {
			set[k+"."+sk] = sv
		}
	}

	update := bson.M{"$set": set}
	unset := bson.M{}
	for _, k := range optional {
		if _, ok := set[k]; !ok {
			unset[k] = ""
		}
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}
