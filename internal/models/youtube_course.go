package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// YouTubeCourse reuses the curriculum tree but lessons reference external
// videos by id instead of stored objects.
type YouTubeCourse struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title"`
	Slug         string             `json:"slug" bson:"slug"`
	Description  string             `json:"description" bson:"description"`
	Level        string             `json:"level" bson:"level"`
	Category     string             `json:"category" bson:"category"`
	Tags         []string           `json:"tags" bson:"tags"`
	ThumbnailURL string             `json:"thumbnail_url" bson:"thumbnail_url"`
	Status       string             `json:"status" bson:"status"`
	AuthorID     primitive.ObjectID `json:"author_id" bson:"author_id"`
	Modules      []Module           `json:"modules" bson:"modules"`
	Stats        CourseStats        `json:"stats" bson:"stats"`
	PublishedAt  *time.Time         `json:"published_at,omitempty" bson:"published_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Tree exposes the curriculum through a Course so tree helpers can be shared.
func (y *YouTubeCourse) Tree() *Course {
	return &Course{Modules: y.Modules}
}

// SetTree copies a normalized tree and its aggregates back.
func (y *YouTubeCourse) SetTree(c *Course) {
	c.Normalize()
	y.Modules = c.Modules
	y.Stats.LessonsCount = c.Stats.LessonsCount
	y.Stats.DurationMinutes = c.Stats.DurationMinutes
}

type YouTubeCourseInput struct {
	Title        string
	Description  string
	Level        string
	Category     string
	Tags         []string
	ThumbnailURL string
}

type YouTubeCourseUpdate struct {
	Title        *string
	Description  *string
	Level        *string
	Category     *string
	Tags         []string
	ThumbnailURL *string
}
