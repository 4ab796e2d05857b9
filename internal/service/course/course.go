package course

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/events"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"Learnify/pkg/slug"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxTitleLength            = 200
	maxShortDescriptionLength = 300
	defaultCurrency           = "USD"
	defaultLanguage           = "en"
	defaultPageSize           = 20
	maxPageSize               = 100
	slugAttempts              = 3
)

type courseRepo interface {
	NewCourse(ctx context.Context, course *models.Course) (primitive.ObjectID, error)
	CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	CourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ReplaceCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error
	ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, error)
	CountCourses(ctx context.Context, f models.CourseFilter) (int, error)
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mediaRepo interface {
	ObjectURL(ctx context.Context, objectKey string) (string, error)
	RemoveObject(ctx context.Context, objectKey string) error
}

type userRepo interface {
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// enrollmentCleaner drops per-course learner state on course deletion.
type enrollmentCleaner interface {
	DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error
}

type CourseService struct {
	log          logger.Log
	courseRepo   courseRepo
	searchRepo   searchRepo
	mediaRepo    mediaRepo
	userRepo     userRepo
	progressRepo enrollmentCleaner
	ratingRepo   enrollmentCleaner
	publisher    events.Publisher
	now          func() time.Time
}

// NewCourseService wires the authoring service. searchRepo may be nil when
// search is not configured.
func NewCourseService(log logger.Log, courseRepo courseRepo, searchRepo searchRepo,
	mediaRepo mediaRepo, userRepo userRepo,
	progressRepo enrollmentCleaner, ratingRepo enrollmentCleaner,
	publisher events.Publisher,
) *CourseService {
	return &CourseService{
		log:          log,
		courseRepo:   courseRepo,
		searchRepo:   searchRepo,
		mediaRepo:    mediaRepo,
		userRepo:     userRepo,
		progressRepo: progressRepo,
		ratingRepo:   ratingRepo,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, authorID primitive.ObjectID, in models.CourseInput) (*models.Course, error) {
	if err := validateCourseInput(in); err != nil {
		return nil, err
	}

	course := &models.Course{
		Status:   models.StatusDraft,
		AuthorID: authorID,
		Modules:  []models.Module{},
	}
	applyCourseInput(course, in)
	course.Normalize()

	// Two creates can pick the same free slug; the unique index decides.
	var err error
	for attempt := 1; ; attempt++ {
		course.Slug, err = slug.Unique(ctx, slug.Make(in.Title), s.courseRepo.SlugExists)
		if err != nil {
			return nil, err
		}
		_, err = s.courseRepo.NewCourse(ctx, course)
		if err == nil {
			break
		}
		if !errors.Is(err, app_errors.ErrSlugTaken) || attempt == slugAttempts {
			return nil, err
		}
		s.log.Warn("course slug taken concurrently, retrying", "slug", course.Slug, "attempt", attempt)
	}
	s.log.Info("course created", "course_id", course.ID.Hex(), "slug", course.Slug)
	return s.withMedia(ctx, course), nil
}

// UpdateCourse applies a partial update. Replaced media objects are removed
// from storage.
func (s *CourseService) UpdateCourse(ctx context.Context, id primitive.ObjectID, upd models.CourseUpdate) (*models.Course, error) {
	return s.mutate(ctx, id, func(c *models.Course) error {
		in := courseInputOf(c)
		mergeCourseUpdate(&in, upd)
		if err := validateCourseInput(in); err != nil {
			return err
		}
		applyCourseInput(c, in)
		return nil
	})
}

func (s *CourseService) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			s.log.ErrorErr("DeleteCourse: failed to remove course from search", err, "course_id", id.Hex())
		}
	}
	if err := s.progressRepo.DeleteByCourse(ctx, id); err != nil {
		s.log.ErrorErr("DeleteCourse: failed to drop enrollments", err, "course_id", id.Hex())
	}
	if err := s.ratingRepo.DeleteByCourse(ctx, id); err != nil {
		s.log.ErrorErr("DeleteCourse: failed to drop ratings", err, "course_id", id.Hex())
	}
	s.removeObjects(ctx, course.ObjectKeys())

	s.log.Info("course deleted", "course_id", id.Hex())
	return nil
}

func (s *CourseService) Publish(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	course, err := s.mutate(ctx, id, func(c *models.Course) error {
		if c.Stats.LessonsCount == 0 {
			return app_errors.Invalid("course has no lessons")
		}
		now := s.now().UTC()
		c.Status = models.StatusPublished
		c.PublishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, s.log, events.SubjectCoursePublished, events.CoursePublished{
		CourseID:    course.ID.Hex(),
		Slug:        course.Slug,
		Title:       course.Title,
		AuthorID:    course.AuthorID.Hex(),
		PublishedAt: *course.PublishedAt,
	})
	return course, nil
}

func (s *CourseService) Unpublish(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	return s.mutate(ctx, id, func(c *models.Course) error {
		c.Status = models.StatusDraft
		return nil
	})
}

// CourseByID returns the full course with media URLs, drafts included.
func (s *CourseService) CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withMedia(ctx, course), nil
}

func (s *CourseService) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	course, err := s.courseRepo.CourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.withMedia(ctx, course), nil
}

// ListCourses lists courses of any status for the authoring dashboard.
func (s *CourseService) ListCourses(ctx context.Context, f models.CourseFilter) ([]models.CourseSummary, int, error) {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	courses, err := s.courseRepo.ListCourses(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.courseRepo.CountCourses(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return s.Summaries(ctx, courses), total, nil
}

// mutate loads a course, applies fn, recomputes the tree aggregates and
// persists it. Media objects no longer referenced are removed and the search
// index is kept in step with the status.
func (s *CourseService) mutate(ctx context.Context, id primitive.ObjectID, fn func(c *models.Course) error) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := course.ObjectKeys()

	if err := fn(course); err != nil {
		return nil, err
	}
	course.Normalize()

	if err := s.courseRepo.ReplaceCourse(ctx, course); err != nil {
		return nil, err
	}

	s.removeObjects(ctx, orphaned(before, course.ObjectKeys()))
	s.syncSearch(ctx, course)
	return s.withMedia(ctx, course), nil
}

func (s *CourseService) syncSearch(ctx context.Context, c *models.Course) {
	if s.searchRepo == nil {
		return
	}
	var err error
	if c.Status == models.StatusPublished {
		err = s.searchRepo.Index(ctx, *c)
	} else {
		err = s.searchRepo.Delete(ctx, c.ID)
	}
	if err != nil {
		s.log.ErrorErr("failed to sync course search index", err, "course_id", c.ID.Hex())
	}
}

func (s *CourseService) removeObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.mediaRepo.RemoveObject(ctx, key); err != nil {
			s.log.ErrorErr("failed to remove media object", err, "object_key", key)
		}
	}
}

func orphaned(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, k := range after {
		keep[k] = struct{}{}
	}
	var out []string
	for _, k := range before {
		if _, ok := keep[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

func (s *CourseService) url(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	u, err := s.mediaRepo.ObjectURL(ctx, key)
	if err != nil {
		s.log.ErrorErr("failed to presign media url", err, "object_key", key)
		return ""
	}
	return u
}

func (s *CourseService) withMedia(ctx context.Context, c *models.Course) *models.Course {
	c.ThumbnailURL = s.url(ctx, c.ThumbnailKey)
	c.PreviewVideoURL = s.url(ctx, c.PreviewVideoKey)
	for mi := range c.Modules {
		for ci := range c.Modules[mi].Chapters {
			lessons := c.Modules[mi].Chapters[ci].Lessons
			for li := range lessons {
				lessons[li].VideoURL = s.url(ctx, lessons[li].VideoKey)
				for ri := range lessons[li].Resources {
					lessons[li].Resources[ri].DownloadURL = s.url(ctx, lessons[li].Resources[ri].ObjectKey)
				}
			}
		}
	}
	return c
}

// Summaries builds catalog cards with author names and thumbnail URLs.
func (s *CourseService) Summaries(ctx context.Context, courses []models.Course) []models.CourseSummary {
	ids := make([]primitive.ObjectID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.AuthorID)
	}
	names := map[primitive.ObjectID]string{}
	users, err := s.userRepo.UsersByIDs(ctx, ids)
	if err != nil {
		s.log.ErrorErr("summaries: failed to load authors", err)
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}

	out := make([]models.CourseSummary, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		c.ThumbnailURL = s.url(ctx, c.ThumbnailKey)
		out = append(out, c.Summary(names[c.AuthorID]))
	}
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func validateCourseInput(in models.CourseInput) error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return app_errors.Invalid("title is required")
	case len([]rune(title)) > maxTitleLength:
		return app_errors.Invalid("title must be at most %d characters", maxTitleLength)
	case len([]rune(in.ShortDescription)) > maxShortDescriptionLength:
		return app_errors.Invalid("short description must be at most %d characters", maxShortDescriptionLength)
	case in.Price < 0:
		return app_errors.Invalid("price must not be negative")
	case in.DiscountPrice != nil && (*in.DiscountPrice < 0 || *in.DiscountPrice > in.Price):
		return app_errors.Invalid("discount price must be between 0 and price")
	case in.Level != "" && !models.ValidLevel(in.Level):
		return app_errors.Invalid("unknown level %q", in.Level)
	}
	return nil
}

func applyCourseInput(c *models.Course, in models.CourseInput) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.ShortDescription = in.ShortDescription
	c.Price = in.Price
	c.DiscountPrice = in.DiscountPrice
	c.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	c.Level = in.Level
	if c.Level == "" {
		c.Level = models.LevelBeginner
	}
	c.Category = strings.TrimSpace(in.Category)
	c.Tags = NormalizeTags(in.Tags)
	c.Language = in.Language
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	c.ThumbnailKey = in.ThumbnailKey
	c.PreviewVideoKey = in.PreviewVideoKey
	c.Requirements = compact(in.Requirements)
	c.Outcomes = compact(in.Outcomes)
}

func courseInputOf(c *models.Course) models.CourseInput {
	return models.CourseInput{
		Title:            c.Title,
		Description:      c.Description,
		ShortDescription: c.ShortDescription,
		Price:            c.Price,
		DiscountPrice:    c.DiscountPrice,
		Currency:         c.Currency,
		Level:            c.Level,
		Category:         c.Category,
		Tags:             c.Tags,
		Language:         c.Language,
		ThumbnailKey:     c.ThumbnailKey,
		PreviewVideoKey:  c.PreviewVideoKey,
		Requirements:     c.Requirements,
		Outcomes:         c.Outcomes,
	}
}

func mergeCourseUpdate(in *models.CourseInput, upd models.CourseUpdate) {
	if upd.Title != nil {
		in.Title = *upd.Title
	}
	if upd.Description != nil {
		in.Description = *upd.Description
	}
	if upd.ShortDescription != nil {
		in.ShortDescription = *upd.ShortDescription
	}
	if upd.Price != nil {
		in.Price = *upd.Price
	}
	if upd.DiscountPrice != nil {
		if *upd.DiscountPrice < 0 {
			in.DiscountPrice = nil
		} else {
			in.DiscountPrice = upd.DiscountPrice
		}
	}
	if upd.Currency != nil {
		in.Currency = *upd.Currency
	}
	if upd.Level != nil {
		in.Level = *upd.Level
	}
	if upd.Category != nil {
		in.Category = *upd.Category
	}
	if upd.Tags != nil {
		in.Tags = upd.Tags
	}
	if upd.Language != nil {
		in.Language = *upd.Language
	}
	if upd.ThumbnailKey != nil {
		in.ThumbnailKey = *upd.ThumbnailKey
	}
	if upd.PreviewVideoKey != nil {
		in.PreviewVideoKey = *upd.PreviewVideoKey
	}
	if upd.Requirements != nil {
		in.Requirements = upd.Requirements
	}
	if upd.Outcomes != nil {
		in.Outcomes = upd.Outcomes
	}
}

// NormalizeTags lowercases, trims and deduplicates tags keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
