package course

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"context"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

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

func findModule(c *models.Course, moduleID string) (int, *models.Module, error) {
	i, m := c.FindModule(moduleID)
	if m == nil {
		return -1, nil, app_errors.ErrModuleNotFound
	}
	return i, m, nil
}

func findChapter(c *models.Course, moduleID, chapterID string) (*models.Module, int, *models.Chapter, error) {
	_, m, err := findModule(c, moduleID)
	if err != nil {
		return nil, -1, nil, err
	}
	i, ch := m.FindChapter(chapterID)
	if ch == nil {
		return nil, -1, nil, app_errors.ErrChapterNotFound
	}
	return m, i, ch, nil
}

// lessonParent returns the chapter holding lessonID and the lesson index.
func lessonParent(c *models.Course, lessonID string) (*models.Chapter, int, error) {
	p, ok := c.LocateLesson(lessonID)
	if !ok {
		return nil, -1, app_errors.ErrLessonNotFound
	}
	_, _, ch, err := findChapter(c, p.ModuleID, p.ChapterID)
	if err != nil {
		return nil, -1, err
	}
	i, _ := ch.FindLesson(lessonID)
	return ch, i, nil
}

func (s *CourseService) AddModule(ctx context.Context, courseID primitive.ObjectID, in models.ModuleInput) (*models.Course, error) {
	title, err := validateTitle("module", in.Title)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		m := models.Module{ID: uuid.NewString(), Title: title, Description: in.Description, Chapters: []models.Chapter{}}
		c.Modules = models.Insert(c.Modules, position(in.Position), m)
		return nil
	})
}

func (s *CourseService) UpdateModule(ctx context.Context, courseID primitive.ObjectID, moduleID string, upd models.ModuleUpdate) (*models.Course, error) {
	var title string
	if upd.Title != nil {
		var err error
		if title, err = validateTitle("module", *upd.Title); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		i, m, err := findModule(c, moduleID)
		if err != nil {
			return err
		}
		if upd.Title != nil {
			m.Title = title
		}
		if upd.Description != nil {
			m.Description = *upd.Description
		}
		if upd.Position != nil {
			c.Modules = models.Move(c.Modules, i, *upd.Position)
		}
		return nil
	})
}

func (s *CourseService) DeleteModule(ctx context.Context, courseID primitive.ObjectID, moduleID string) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		i, _, err := findModule(c, moduleID)
		if err != nil {
			return err
		}
		c.Modules = models.Remove(c.Modules, i)
		return nil
	})
}

func (s *CourseService) MoveModule(ctx context.Context, courseID primitive.ObjectID, moduleID string, to int) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		i, _, err := findModule(c, moduleID)
		if err != nil {
			return err
		}
		c.Modules = models.Move(c.Modules, i, to)
		return nil
	})
}

func (s *CourseService) AddChapter(ctx context.Context, courseID primitive.ObjectID, moduleID string, in models.ChapterInput) (*models.Course, error) {
	title, err := validateTitle("chapter", in.Title)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		_, m, err := findModule(c, moduleID)
		if err != nil {
			return err
		}
		ch := models.Chapter{ID: uuid.NewString(), Title: title, Lessons: []models.Lesson{}}
		m.Chapters = models.Insert(m.Chapters, position(in.Position), ch)
		return nil
	})
}

func (s *CourseService) UpdateChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.ChapterInput) (*models.Course, error) {
	title, err := validateTitle("chapter", in.Title)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		m, i, ch, err := findChapter(c, moduleID, chapterID)
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

func (s *CourseService) DeleteChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		m, i, _, err := findChapter(c, moduleID, chapterID)
		if err != nil {
			return err
		}
		m.Chapters = models.Remove(m.Chapters, i)
		return nil
	})
}

func (s *CourseService) MoveChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, to int) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		m, i, _, err := findChapter(c, moduleID, chapterID)
		if err != nil {
			return err
		}
		m.Chapters = models.Move(m.Chapters, i, to)
		return nil
	})
}

func validateLessonInput(in models.LessonInput) (models.LessonInput, error) {
	title, err := validateTitle("lesson", in.Title)
	if err != nil {
		return in, err
	}
	in.Title = title
	if in.Type == "" {
		in.Type = models.LessonTypeVideo
	}
	if !models.ValidLessonType(in.Type) {
		return in, app_errors.Invalid("unknown lesson type %q", in.Type)
	}
	if in.DurationMinutes < 0 {
		return in, app_errors.Invalid("lesson duration must not be negative")
	}
	return in, nil
}

func applyLessonInput(l *models.Lesson, in models.LessonInput) {
	l.Title = in.Title
	l.Description = in.Description
	l.Type = in.Type
	l.Content = in.Content
	l.VideoKey = in.VideoKey
	l.DurationMinutes = in.DurationMinutes
	l.IsFreePreview = in.IsFreePreview
}

func (s *CourseService) AddLesson(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.LessonInput) (*models.Course, error) {
	in, err := validateLessonInput(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		_, _, ch, err := findChapter(c, moduleID, chapterID)
		if err != nil {
			return err
		}
		l := models.Lesson{ID: uuid.NewString(), Resources: []models.Resource{}}
		applyLessonInput(&l, in)
		ch.Lessons = models.Insert(ch.Lessons, position(in.Position), l)
		return nil
	})
}

// UpdateLesson applies a partial edit. Resources are kept, and a media key
// is only replaced when the edit sets it.
func (s *CourseService) UpdateLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string, upd models.LessonUpdate) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		ch, i, err := lessonParent(c, lessonID)
		if err != nil {
			return err
		}
		in, err := validateLessonInput(upd.Merge(ch.Lessons[i].Input()))
		if err != nil {
			return err
		}
		applyLessonInput(&ch.Lessons[i], in)
		if upd.Position != nil {
			ch.Lessons = models.Move(ch.Lessons, i, *upd.Position)
		}
		return nil
	})
}

func (s *CourseService) DeleteLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		ch, i, err := lessonParent(c, lessonID)
		if err != nil {
			return err
		}
		ch.Lessons = models.Remove(ch.Lessons, i)
		return nil
	})
}

// MoveLesson reorders a lesson, optionally into another chapter.
func (s *CourseService) MoveLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string, mv models.LessonMove) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		p, ok := c.LocateLesson(lessonID)
		if !ok {
			return app_errors.ErrLessonNotFound
		}
		targetModule, targetChapter := p.ModuleID, p.ChapterID
		if mv.ModuleID != "" {
			targetModule = mv.ModuleID
		}
		if mv.ChapterID != "" {
			targetChapter = mv.ChapterID
		}

		src, i, err := lessonParent(c, lessonID)
		if err != nil {
			return err
		}
		if targetModule == p.ModuleID && targetChapter == p.ChapterID {
			src.Lessons = models.Move(src.Lessons, i, mv.Index)
			return nil
		}

		_, _, dst, err := findChapter(c, targetModule, targetChapter)
		if err != nil {
			return err
		}
		lesson := src.Lessons[i]
		src.Lessons = models.Remove(src.Lessons, i)
		idx := mv.Index
		if idx < 0 {
			idx = 0
		}
		dst.Lessons = models.Insert(dst.Lessons, idx, lesson)
		return nil
	})
}

func validateResourceInput(in models.ResourceInput) (models.ResourceInput, error) {
	title, err := validateTitle("resource", in.Title)
	if err != nil {
		return in, err
	}
	in.Title = title
	if in.Type == "" {
		in.Type = models.ResourceTypeFile
	}
	if !models.ValidResourceType(in.Type) {
		return in, app_errors.Invalid("unknown resource type %q", in.Type)
	}
	switch {
	case in.Type == models.ResourceTypeLink && in.URL == "":
		return in, app_errors.Invalid("link resource needs a url")
	case in.Type != models.ResourceTypeLink && in.ObjectKey == "" && in.URL == "":
		return in, app_errors.Invalid("file resource needs an object key or url")
	}
	return in, nil
}

func (s *CourseService) AddResource(ctx context.Context, courseID primitive.ObjectID, lessonID string, in models.ResourceInput) (*models.Course, error) {
	in, err := validateResourceInput(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		ch, i, err := lessonParent(c, lessonID)
		if err != nil {
			return err
		}
		l := &ch.Lessons[i]
		l.Resources = append(l.Resources, models.Resource{
			ID:        uuid.NewString(),
			Title:     in.Title,
			Type:      in.Type,
			URL:       in.URL,
			ObjectKey: in.ObjectKey,
		})
		return nil
	})
}

func (s *CourseService) UpdateResource(ctx context.Context, courseID primitive.ObjectID, lessonID, resourceID string, in models.ResourceInput) (*models.Course, error) {
	in, err := validateResourceInput(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		ch, i, err := lessonParent(c, lessonID)
		if err != nil {
			return err
		}
		_, r := ch.Lessons[i].FindResource(resourceID)
		if r == nil {
			return app_errors.ErrResourceNotFound
		}
		r.Title, r.Type, r.URL, r.ObjectKey = in.Title, in.Type, in.URL, in.ObjectKey
		return nil
	})
}

func (s *CourseService) DeleteResource(ctx context.Context, courseID primitive.ObjectID, lessonID, resourceID string) (*models.Course, error) {
	return s.mutate(ctx, courseID, func(c *models.Course) error {
		ch, i, err := lessonParent(c, lessonID)
		if err != nil {
			return err
		}
		l := &ch.Lessons[i]
		ri, r := l.FindResource(resourceID)
		if r == nil {
			return app_errors.ErrResourceNotFound
		}
		l.Resources = models.Remove(l.Resources, ri)
		return nil
	})
}
