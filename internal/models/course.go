package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelAll          = "all"
)

const (
	LessonTypeVideo   = "video"
	LessonTypeArticle = "article"
	LessonTypeQuiz    = "quiz"
)

const (
	ResourceTypeFile = "file"
	ResourceTypeLink = "link"
	ResourceTypePDF  = "pdf"
)

// Course is stored as a single document; the curriculum tree is embedded.
type Course struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title            string             `json:"title" bson:"title"`
	Slug             string             `json:"slug" bson:"slug"`
	Description      string             `json:"description" bson:"description"`
	ShortDescription string             `json:"short_description" bson:"short_description"`
	Price            float64            `json:"price" bson:"price"`
	DiscountPrice    *float64           `json:"discount_price,omitempty" bson:"discount_price,omitempty"`
	Currency         string             `json:"currency" bson:"currency"`
	Level            string             `json:"level" bson:"level"`
	Category         string             `json:"category" bson:"category"`
	Tags             []string           `json:"tags" bson:"tags"`
	Language         string             `json:"language" bson:"language"`
	ThumbnailKey     string             `json:"thumbnail_key,omitempty" bson:"thumbnail_key,omitempty"`
	PreviewVideoKey  string             `json:"preview_video_key,omitempty" bson:"preview_video_key,omitempty"`
	Requirements     []string           `json:"requirements" bson:"requirements"`
	Outcomes         []string           `json:"outcomes" bson:"outcomes"`
	Status           string             `json:"status" bson:"status"`
	AuthorID         primitive.ObjectID `json:"author_id" bson:"author_id"`
	Modules          []Module           `json:"modules" bson:"modules"`
	Stats            CourseStats        `json:"stats" bson:"stats"`
	PublishedAt      *time.Time         `json:"published_at,omitempty" bson:"published_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`

	// Resolved presigned URLs, never persisted.
	ThumbnailURL    string `json:"thumbnail_url,omitempty" bson:"-"`
	PreviewVideoURL string `json:"preview_video_url,omitempty" bson:"-"`
}

type CourseStats struct {
	StudentsCount   int     `json:"students_count" bson:"students_count"`
	Rating          float64 `json:"rating" bson:"rating"`
	RatingsCount    int     `json:"ratings_count" bson:"ratings_count"`
	DurationMinutes int     `json:"duration_minutes" bson:"duration_minutes"`
	LessonsCount    int     `json:"lessons_count" bson:"lessons_count"`
}

type Module struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Order       int       `json:"order" bson:"order"`
	Chapters    []Chapter `json:"chapters" bson:"chapters"`
}

type Chapter struct {
	ID      string   `json:"id" bson:"id"`
	Title   string   `json:"title" bson:"title"`
	Order   int      `json:"order" bson:"order"`
	Lessons []Lesson `json:"lessons" bson:"lessons"`
}

type Lesson struct {
	ID              string     `json:"id" bson:"id"`
	Title           string     `json:"title" bson:"title"`
	Description     string     `json:"description" bson:"description"`
	Type            string     `json:"type" bson:"type"`
	Content         string     `json:"content,omitempty" bson:"content,omitempty"`
	VideoKey        string     `json:"video_key,omitempty" bson:"video_key,omitempty"`
	YouTubeVideoID  string     `json:"youtube_video_id,omitempty" bson:"youtube_video_id,omitempty"`
	DurationMinutes int        `json:"duration_minutes" bson:"duration_minutes"`
	IsFreePreview   bool       `json:"is_free_preview" bson:"is_free_preview"`
	Order           int        `json:"order" bson:"order"`
	Resources       []Resource `json:"resources" bson:"resources"`

	VideoURL string `json:"video_url,omitempty" bson:"-"`
}

type Resource struct {
	ID        string `json:"id" bson:"id"`
	Title     string `json:"title" bson:"title"`
	Type      string `json:"type" bson:"type"`
	URL       string `json:"url,omitempty" bson:"url,omitempty"`
	ObjectKey string `json:"object_key,omitempty" bson:"object_key,omitempty"`
	Order     int    `json:"order" bson:"order"`

	DownloadURL string `json:"download_url,omitempty" bson:"-"`
}

// CourseSummary is the catalog card shape.
type CourseSummary struct {
	ID               primitive.ObjectID `json:"id"`
	Title            string             `json:"title"`
	Slug             string             `json:"slug"`
	ShortDescription string             `json:"short_description"`
	Price            float64            `json:"price"`
	DiscountPrice    *float64           `json:"discount_price,omitempty"`
	Currency         string             `json:"currency"`
	Level            string             `json:"level"`
	Category         string             `json:"category"`
	Tags             []string           `json:"tags"`
	ThumbnailURL     string             `json:"thumbnail_url,omitempty"`
	AuthorName       string             `json:"author_name"`
	Status           string             `json:"status"`
	Stats            CourseStats        `json:"stats"`
}

// CourseDetail is the learner view of a course.
type CourseDetail struct {
	*Course
	AuthorName string        `json:"author_name"`
	IsEnrolled bool          `json:"is_enrolled"`
	Progress   *UserProgress `json:"progress,omitempty"`
	UserRating int           `json:"user_rating,omitempty"`
}

// CourseFilter narrows catalog listings. Empty fields are ignored.
type CourseFilter struct {
	Status   string
	AuthorID primitive.ObjectID
	Category string
	Level    string
	Tag      string
	Query    string // free text, served by search when configured
	IDs      []primitive.ObjectID
	Limit    int
	Offset   int
}

// CourseUpdate carries a partial update; nil fields are left untouched.
type CourseUpdate struct {
	Title            *string
	Description      *string
	ShortDescription *string
	Price            *float64
	DiscountPrice    *float64
	Currency         *string
	Level            *string
	Category         *string
	Tags             []string
	Language         *string
	ThumbnailKey     *string
	PreviewVideoKey  *string
	Requirements     []string
	Outcomes         []string
}

type CourseRating struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CourseID  primitive.ObjectID `json:"course_id" bson:"course_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Value     int                `json:"value" bson:"value"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Summary builds the catalog card of c.
func (c *Course) Summary(authorName string) CourseSummary {
	return CourseSummary{
		ID:               c.ID,
		Title:            c.Title,
		Slug:             c.Slug,
		ShortDescription: c.ShortDescription,
		Price:            c.Price,
		DiscountPrice:    c.DiscountPrice,
		Currency:         c.Currency,
		Level:            c.Level,
		Category:         c.Category,
		Tags:             c.Tags,
		ThumbnailURL:     c.ThumbnailURL,
		AuthorName:       authorName,
		Status:           c.Status,
		Stats:            c.Stats,
	}
}

func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAll:
		return true
	}
	return false
}

func ValidLessonType(t string) bool {
	switch t {
	case LessonTypeVideo, LessonTypeArticle, LessonTypeQuiz:
		return true
	}
	return false
}

func ValidResourceType(t string) bool {
	switch t {
	case ResourceTypeFile, ResourceTypeLink, ResourceTypePDF:
		return true
	}
	return false
}
