package catalog

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/events"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// courseReader resolves courses with their media URLs.
type courseReader interface {
	CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	CourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	Summaries(ctx context.Context, courses []models.Course) []models.CourseSummary
}

type courseRepo interface {
	CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, error)
	CountCourses(ctx context.Context, f models.CourseFilter) (int, error)
	IncrementStudents(ctx context.Context, id primitive.ObjectID, delta int) error
	SetRatingStats(ctx context.Context, id primitive.ObjectID, rating float64, count int) error
}

type searchRepo interface {
	Search(ctx context.Context, f models.CourseFilter, query string) ([]primitive.ObjectID, int, error)
}

type progressRepo interface {
	NewProgress(ctx context.Context, p *models.UserProgress) error
	Progress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error)
	ProgressByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserProgress, error)
}

type ratingRepo interface {
	UpsertRating(ctx context.Context, courseID, userID primitive.ObjectID, value int) (*models.CourseRating, error)
	RatingStats(ctx context.Context, courseID primitive.ObjectID) (float64, int, error)
	UserRating(ctx context.Context, courseID, userID primitive.ObjectID) (int, error)
}

type CatalogService struct {
	log          logger.Log
	courses      courseReader
	courseRepo   courseRepo
	searchRepo   searchRepo
	progressRepo progressRepo
	ratingRepo   ratingRepo
	publisher    events.Publisher
}

// NewCatalogService wires the learner side of courses. searchRepo may be nil,
// free text queries then fall back to a title match in the store.
func NewCatalogService(log logger.Log, courses courseReader, courseRepo courseRepo, searchRepo searchRepo,
	progressRepo progressRepo, ratingRepo ratingRepo, publisher events.Publisher,
) *CatalogService {
	return &CatalogService{
		log:          log,
		courses:      courses,
		courseRepo:   courseRepo,
		searchRepo:   searchRepo,
		progressRepo: progressRepo,
		ratingRepo:   ratingRepo,
		publisher:    publisher,
	}
}

// ListPublished returns a page of published course cards and the total count.
func (s *CatalogService) ListPublished(ctx context.Context, f models.CourseFilter) ([]models.CourseSummary, int, error) {
	f.Status = models.StatusPublished
	f.AuthorID = primitive.NilObjectID
	f.IDs = nil
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	if f.Query != "" && s.searchRepo != nil {
		return s.search(ctx, f)
	}

	courses, err := s.courseRepo.ListCourses(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.courseRepo.CountCourses(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return s.courses.Summaries(ctx, courses), total, nil
}

func (s *CatalogService) search(ctx context.Context, f models.CourseFilter) ([]models.CourseSummary, int, error) {
	ids, total, err := s.searchRepo.Search(ctx, f, f.Query)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.CourseSummary{}, total, nil
	}

	found, err := s.courseRepo.ListCourses(ctx, models.CourseFilter{
		Status: models.StatusPublished,
		IDs:    ids,
		Limit:  len(ids),
	})
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[primitive.ObjectID]models.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ranked := make([]models.Course, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ranked = append(ranked, c)
		}
	}
	return s.courses.Summaries(ctx, ranked), total, nil
}

// CourseByID returns the learner view. viewer is nil for anonymous callers.
func (s *CatalogService) CourseByID(ctx context.Context, viewer *models.User, id primitive.ObjectID) (*models.CourseDetail, error) {
	c, err := s.courses.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, viewer, c)
}

func (s *CatalogService) CourseBySlug(ctx context.Context, viewer *models.User, slug string) (*models.CourseDetail, error) {
	c, err := s.courses.CourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, viewer, c)
}

func (s *CatalogService) detail(ctx context.Context, viewer *models.User, c *models.Course) (*models.CourseDetail, error) {
	admin := viewer != nil && viewer.IsAdmin()
	if c.Status != models.StatusPublished && !admin {
		return nil, app_errors.ErrCourseNotFound
	}

	d := &models.CourseDetail{Course: c}
	if cards := s.courses.Summaries(ctx, []models.Course{*c}); len(cards) == 1 {
		d.AuthorName = cards[0].AuthorName
	}

	if viewer != nil {
		p, err := s.progressRepo.Progress(ctx, viewer.ID, c.ID)
		switch {
		case err == nil:
			d.IsEnrolled = true
			d.Progress = p
		case !errors.Is(err, app_errors.ErrNotEnrolled):
			return nil, err
		}
		if d.IsEnrolled {
			if d.UserRating, err = s.ratingRepo.UserRating(ctx, c.ID, viewer.ID); err != nil {
				s.log.ErrorErr("detail: failed to load user rating", err, "course_id", c.ID.Hex())
			}
		}
	}

	if !d.IsEnrolled && !admin {
		lockContent(c)
	}
	return d, nil
}

// lockContent strips media and body of every lesson that is not a free preview.
func lockContent(c *models.Course) {
	for mi := range c.Modules {
		for ci := range c.Modules[mi].Chapters {
			lessons := c.Modules[mi].Chapters[ci].Lessons
			for li := range lessons {
				l := &lessons[li]
				if l.IsFreePreview {
					continue
				}
				l.VideoKey = ""
				l.VideoURL = ""
				l.YouTubeVideoID = ""
				l.Content = ""
				for ri := range l.Resources {
					l.Resources[ri].ObjectKey = ""
					l.Resources[ri].URL = ""
					l.Resources[ri].DownloadURL = ""
				}
			}
		}
	}
}

// Enroll creates the progress document of userID in a published course.
func (s *CatalogService) Enroll(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	c, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusPublished {
		return nil, app_errors.ErrCourseNotPublished
	}

	p := &models.UserProgress{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
	}
	if ids := c.LessonIDs(); len(ids) > 0 {
		p.CurrentLessonID = ids[0]
	}
	if err := s.progressRepo.NewProgress(ctx, p); err != nil {
		return nil, err
	}
	if err := s.courseRepo.IncrementStudents(ctx, courseID, 1); err != nil {
		s.log.ErrorErr("Enroll: failed to increment students count", err, "course_id", courseID.Hex())
	}

	events.Emit(ctx, s.publisher, s.log, events.SubjectCourseEnrolled, events.CourseEnrolled{
		CourseID:   courseID.Hex(),
		UserID:     userID.Hex(),
		EnrolledAt: p.EnrolledAt,
	})
	s.log.Info("user enrolled", "course_id", courseID.Hex(), "user_id", userID.Hex())
	return p, nil
}

// Enrollments lists the courses userID is enrolled in, most recently
// accessed first.
func (s *CatalogService) Enrollments(ctx context.Context, userID primitive.ObjectID) ([]models.Enrollment, error) {
	progress, err := s.progressRepo.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(progress) == 0 {
		return []models.Enrollment{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(progress))
	for _, p := range progress {
		ids = append(ids, p.CourseID)
	}
	courses, err := s.courseRepo.ListCourses(ctx, models.CourseFilter{IDs: ids, Limit: len(ids)})
	if err != nil {
		return nil, err
	}
	cards := make(map[primitive.ObjectID]models.CourseSummary, len(courses))
	for _, card := range s.courses.Summaries(ctx, courses) {
		cards[card.ID] = card
	}

	out := make([]models.Enrollment, 0, len(progress))
	for _, p := range progress {
		card, ok := cards[p.CourseID]
		if !ok {
			continue
		}
		out = append(out, models.Enrollment{Progress: p, Course: card})
	}
	return out, nil
}

// Rate stores the rating of an enrolled user and refreshes the course
// aggregates. It returns the new average and count.
func (s *CatalogService) Rate(ctx context.Context, userID, courseID primitive.ObjectID, value int) (float64, int, error) {
	if value < 1 || value > 5 {
		return 0, 0, app_errors.Invalid("rating must be between 1 and 5")
	}
	if _, err := s.progressRepo.Progress(ctx, userID, courseID); err != nil {
		return 0, 0, err
	}
	if _, err := s.ratingRepo.UpsertRating(ctx, courseID, userID, value); err != nil {
		return 0, 0, err
	}

	avg, count, err := s.ratingRepo.RatingStats(ctx, courseID)
	if err != nil {
		return 0, 0, err
	}
	if err := s.courseRepo.SetRatingStats(ctx, courseID, avg, count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}
