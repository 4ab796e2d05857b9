package youtube

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/internal/service/course"
	"Learnify/pkg/logger"
	"Learnify/pkg/slug"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxTitleLength = 200
	slugAttempts   = 3
)

type courseRepo interface {
	NewYouTubeCourse(ctx context.Context, course *models.YouTubeCourse) (primitive.ObjectID, error)
	YouTubeCourseByID(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ReplaceYouTubeCourse(ctx context.Context, course *models.YouTubeCourse) error
	DeleteYouTubeCourse(ctx context.Context, id primitive.ObjectID) error
	ListYouTubeCourses(ctx context.Context, f models.CourseFilter) ([]models.YouTubeCourse, int, error)
}

type YouTubeCourseService struct {
	log        logger.Log
	courseRepo courseRepo
	now        func() time.Time
}

func NewYouTubeCourseService(log logger.Log, courseRepo courseRepo) *YouTubeCourseService {
	return &YouTubeCourseService{log: log, courseRepo: courseRepo, now: time.Now}
}

func (s *YouTubeCourseService) CreateCourse(ctx context.Context, authorID primitive.ObjectID, in models.YouTubeCourseInput) (*models.YouTubeCourse, error) {
	title, err := validateTitle("course", in.Title)
	if err != nil {
		return nil, err
	}
	if in.Level != "" && !models.ValidLevel(in.Level) {
		return nil, app_errors.Invalid("unknown level %q", in.Level)
	}

	c := &models.YouTubeCourse{
		Title:        title,
		Description:  in.Description,
		Level:        in.Level,
		Category:     strings.TrimSpace(in.Category),
		Tags:         course.NormalizeTags(in.Tags),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
		Status:       models.StatusDraft,
		AuthorID:     authorID,
		Modules:      []models.Module{},
	}
	if c.Level == "" {
		c.Level = models.LevelBeginner
	}

	for attempt := 1; ; attempt++ {
		c.Slug, err = slug.Unique(ctx, slug.Make(title), s.courseRepo.SlugExists)
		if err != nil {
			return nil, err
		}
		_, err = s.courseRepo.NewYouTubeCourse(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, app_errors.ErrSlugTaken) || attempt == slugAttempts {
			return nil, err
		}
	}
	s.log.Info("youtube course created", "course_id", c.ID.Hex(), "slug", c.Slug)
	return withWatchURLs(c), nil
}

func (s *YouTubeCourseService) UpdateCourse(ctx context.Context, id primitive.ObjectID, upd models.YouTubeCourseUpdate) (*models.YouTubeCourse, error) {
	return s.mutate(ctx, id, func(c *models.YouTubeCourse) error {
		if upd.Title != nil {
			title, err := validateTitle("course", *upd.Title)
			if err != nil {
				return err
			}
			c.Title = title
		}
		if upd.Level != nil {
			if !models.ValidLevel(*upd.Level) {
				return app_errors.Invalid("unknown level %q", *upd.Level)
			}
			c.Level = *upd.Level
		}
		if upd.Description != nil {
			c.Description = *upd.Description
		}
		if upd.Category != nil {
			c.Category = strings.TrimSpace(*upd.Category)
		}
		if upd.Tags != nil {
			c.Tags = course.NormalizeTags(upd.Tags)
		}
		if upd.ThumbnailURL != nil {
			c.ThumbnailURL = strings.TrimSpace(*upd.ThumbnailURL)
		}
		return nil
	})
}

func (s *YouTubeCourseService) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	if err := s.courseRepo.DeleteYouTubeCourse(ctx, id); err != nil {
		return err
	}
	s.log.Info("youtube course deleted", "course_id", id.Hex())
	return nil
}

func (s *YouTubeCourseService) Publish(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error) {
	return s.mutate(ctx, id, func(c *models.YouTubeCourse) error {
		if c.Stats.LessonsCount == 0 {
			return app_errors.Invalid("course has no lessons")
		}
		now := s.now().UTC()
		c.Status = models.StatusPublished
		c.PublishedAt = &now
		return nil
	})
}

func (s *YouTubeCourseService) Unpublish(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error) {
	return s.mutate(ctx, id, func(c *models.YouTubeCourse) error {
		c.Status = models.StatusDraft
		return nil
	})
}

func (s *YouTubeCourseService) CourseByID(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error) {
	c, err := s.courseRepo.YouTubeCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return withWatchURLs(c), nil
}

// ListCourses returns course cards without their curriculum.
func (s *YouTubeCourseService) ListCourses(ctx context.Context, f models.CourseFilter) ([]models.YouTubeCourse, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.courseRepo.ListYouTubeCourses(ctx, f)
}

func (s *YouTubeCourseService) mutate(ctx context.Context, id primitive.ObjectID, fn func(c *models.YouTubeCourse) error) (*models.YouTubeCourse, error) {
	c, err := s.courseRepo.YouTubeCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.SetTree(c.Tree())
	if c.ThumbnailURL == "" {
		if vid := firstVideoID(c.Modules); vid != "" {
			c.ThumbnailURL = ThumbnailURL(vid)
		}
	}
	if err := s.courseRepo.ReplaceYouTubeCourse(ctx, c); err != nil {
		return nil, err
	}
	return withWatchURLs(c), nil
}

// mutateTree runs fn against the curriculum of the course.
func (s *YouTubeCourseService) mutateTree(ctx context.Context, id primitive.ObjectID, fn func(t *models.Course) error) (*models.YouTubeCourse, error) {
	return s.mutate(ctx, id, func(c *models.YouTubeCourse) error {
		t := c.Tree()
		if err := fn(t); err != nil {
			return err
		}
		c.SetTree(t)
		return nil
	})
}

func (s *YouTubeCourseService) AddModule(ctx context.Context, courseID primitive.ObjectID, in models.ModuleInput) (*models.YouTubeCourse, error) {
	title, err := validateTitle("module", in.Title)
	if err != nil {
		return nil, err
	}
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		m := models.Module{ID: uuid.NewString(), Title: title, Description: in.Description, Chapters: []models.Chapter{}}
		t.Modules = models.Insert(t.Modules, position(in.Position), m)
		return nil
	})
}

func (s *YouTubeCourseService) UpdateModule(ctx context.Context, courseID primitive.ObjectID, moduleID string, upd models.ModuleUpdate) (*models.YouTubeCourse, error) {
	var title string
	if upd.Title != nil {
		var err error
		if title, err = validateTitle("module", *upd.Title); err != nil {
			return nil, err
		}
	}
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		i, m := t.FindModule(moduleID)
		if m == nil {
			return app_errors.ErrModuleNotFound
		}
		if upd.Title != nil {
			m.Title = title
		}
		if upd.Description != nil {
			m.Description = *upd.Description
		}
		if upd.Position != nil {
			t.Modules = models.Move(t.Modules, i, *upd.Position)
		}
		return nil
	})
}

func (s *YouTubeCourseService) DeleteModule(ctx context.Context, courseID primitive.ObjectID, moduleID string) (*models.YouTubeCourse, error) {
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		i, m := t.FindModule(moduleID)
		if m == nil {
			return app_errors.ErrModuleNotFound
		}
		t.Modules = models.Remove(t.Modules, i)
		return nil
	})
}

func (s *YouTubeCourseService) AddChapter(ctx context.Context, courseID primitive.ObjectID, moduleID string, in models.ChapterInput) (*models.YouTubeCourse, error) {
	title, err := validateTitle("chapter", in.Title)
	if err != nil {
		return nil, err
	}
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		_, m := t.FindModule(moduleID)
		if m == nil {
			return app_errors.ErrModuleNotFound
		}
		ch := models.Chapter{ID: uuid.NewString(), Title: title, Lessons: []models.Lesson{}}
		m.Chapters = models.Insert(m.Chapters, position(in.Position), ch)
		return nil
	})
}

func (s *YouTubeCourseService) UpdateChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.ChapterInput) (*models.YouTubeCourse, error) {
	title, err := validateTitle("chapter", in.Title)
	if err != nil {
		return nil, err
	}
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		m, i, ch, err := findChapter(t, moduleID, chapterID)
		if err != nil {
			return err
		}
		ch.Title = title
		if in.Position != nil {
			m.Chapters = models.Move(m.Chapters, i, *in.Position)
		}
		return nil
	})
}

func (s *YouTubeCourseService) DeleteChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string) (*models.YouTubeCourse, error) {
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		m, i, _, err := findChapter(t, moduleID, chapterID)
		if err != nil {
			return err
		}
		m.Chapters = models.Remove(m.Chapters, i)
		return nil
	})
}

// AddLesson requires VideoURL to be a YouTube link or a bare video id.
func (s *YouTubeCourseService) AddLesson(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.LessonInput) (*models.YouTubeCourse, error) {
	l, err := lessonFromInput(in)
	if err != nil {
		return nil, err
	}
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		_, _, ch, err := findChapter(t, moduleID, chapterID)
		if err != nil {
			return err
		}
		l.ID = uuid.NewString()
		ch.Lessons = models.Insert(ch.Lessons, position(in.Position), l)
		return nil
	})
}

// UpdateLesson applies a partial edit; the video is kept unless VideoURL is set.
func (s *YouTubeCourseService) UpdateLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string, upd models.LessonUpdate) (*models.YouTubeCourse, error) {
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		p, ok := t.LocateLesson(lessonID)
		if !ok {
			return app_errors.ErrLessonNotFound
		}
		_, _, ch, err := findChapter(t, p.ModuleID, p.ChapterID)
		if err != nil {
			return err
		}
		i, cur := ch.FindLesson(lessonID)
		l, err := lessonFromInput(upd.Merge(cur.Input()))
		if err != nil {
			return err
		}
		l.ID = cur.ID
		l.Resources = cur.Resources
		ch.Lessons[i] = l
		if upd.Position != nil {
			ch.Lessons = models.Move(ch.Lessons, i, *upd.Position)
		}
		return nil
	})
}

func (s *YouTubeCourseService) DeleteLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string) (*models.YouTubeCourse, error) {
	return s.mutateTree(ctx, courseID, func(t *models.Course) error {
		p, ok := t.LocateLesson(lessonID)
		if !ok {
			return app_errors.ErrLessonNotFound
		}
		_, _, ch, err := findChapter(t, p.ModuleID, p.ChapterID)
		if err != nil {
			return err
		}
		i, _ := ch.FindLesson(lessonID)
		ch.Lessons = models.Remove(ch.Lessons, i)
		return nil
	})
}

func lessonFromInput(in models.LessonInput) (models.Lesson, error) {
	title, err := validateTitle("lesson", in.Title)
	if err != nil {
		return models.Lesson{}, err
	}
	if in.DurationMinutes < 0 {
		return models.Lesson{}, app_errors.Invalid("lesson duration must not be negative")
	}
	vid, err := VideoID(in.VideoURL)
	if err != nil {
		return models.Lesson{}, err
	}
	return models.Lesson{
		Title:           title,
		Description:     in.Description,
		Type:            models.LessonTypeVideo,
		YouTubeVideoID:  vid,
		DurationMinutes: in.DurationMinutes,
		IsFreePreview:   in.IsFreePreview,
		Resources:       []models.Resource{},
	}, nil
}

func findChapter(t *models.Course, moduleID, chapterID string) (*models.Module, int, *models.Chapter, error) {
	_, m := t.FindModule(moduleID)
	if m == nil {
		return nil, -1, nil, app_errors.ErrModuleNotFound
	}
	i, ch := m.FindChapter(chapterID)
	if ch == nil {
		return nil, -1, nil, app_errors.ErrChapterNotFound
	}
	return m, i, ch, nil
}

func firstVideoID(modules []models.Module) string {
	for _, m := range modules {
		for _, ch := range m.Chapters {
			for _, l := range ch.Lessons {
				if l.YouTubeVideoID != "" {
					return l.YouTubeVideoID
				}
			}
		}
	}
	return ""
}

func withWatchURLs(c *models.YouTubeCourse) *models.YouTubeCourse {
	for mi := range c.Modules {
		for ci := range c.Modules[mi].Chapters {
			lessons := c.Modules[mi].Chapters[ci].Lessons
			for li := range lessons {
				if lessons[li].YouTubeVideoID != "" {
					lessons[li].VideoURL = WatchURL(lessons[li].YouTubeVideoID)
				}
			}
		}
	}
	return c
}

func position(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func validateTitle(what, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", app_errors.Invalid("%s title is required", what)
	}
	if len([]rune(title)) > maxTitleLength {
		return "", app_errors.Invalid("%s title must be at most %d characters", what, maxTitleLength)
	}
	return title, nil
}
