package progress

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
}

type progressRepo interface {
	Progress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error)
	MarkLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, completed bool) (*models.UserProgress, error)
	SetCurrentLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) (*models.UserProgress, error)
	ResetProgress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error)
	SetProgressState(ctx context.Context, id primitive.ObjectID, progress float64, completedAt *time.Time) error
}

type ProgressService struct {
	log          logger.Log
	courseRepo   courseRepo
	progressRepo progressRepo
	now          func() time.Time
}

func NewProgressService(log logger.Log, courseRepo courseRepo, progressRepo progressRepo) *ProgressService {
	return &ProgressService{
		log:          log,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		now:          time.Now,
	}
}

// MarkLesson adds lessonID to or removes it from the completed set and
// recomputes the progress fraction against the current curriculum.
func (s *ProgressService) MarkLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, completed bool) (*models.UserProgress, error) {
	course, err := s.lessonCourse(ctx, courseID, lessonID)
	if err != nil {
		return nil, err
	}

	p, err := s.progressRepo.MarkLesson(ctx, userID, courseID, lessonID, completed)
	if err != nil {
		return nil, err
	}

	p.Recalculate(course.LessonIDs(), s.now().UTC())
	if err := s.progressRepo.SetProgressState(ctx, p.ID, p.Progress, p.CompletedAt); err != nil {
		return nil, err
	}
	if p.CompletedAt != nil && completed {
		s.log.Info("course completed", "course_id", courseID.Hex(), "user_id", userID.Hex())
	}
	return p, nil
}

func (s *ProgressService) SetCurrentLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) (*models.UserProgress, error) {
	if _, err := s.lessonCourse(ctx, courseID, lessonID); err != nil {
		return nil, err
	}
	return s.progressRepo.SetCurrentLesson(ctx, userID, courseID, lessonID)
}

// Progress returns the stored progress with the fraction recomputed against
// the current curriculum, which may have changed since the last mark.
func (s *ProgressService) Progress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	p, err := s.progressRepo.Progress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	prev, wasDone := p.Progress, p.CompletedAt != nil
	p.Recalculate(course.LessonIDs(), s.now().UTC())
	if p.Progress != prev || (p.CompletedAt != nil) != wasDone {
		if err := s.progressRepo.SetProgressState(ctx, p.ID, p.Progress, p.CompletedAt); err != nil {
			s.log.ErrorErr("Progress: failed to persist recomputed progress", err, "progress_id", p.ID.Hex())
		}
	}
	return p, nil
}

func (s *ProgressService) ResetProgress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	return s.progressRepo.ResetProgress(ctx, userID, courseID)
}

func (s *ProgressService) lessonCourse(ctx context.Context, courseID primitive.ObjectID, lessonID string) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, ok := course.LocateLesson(lessonID); !ok {
		return nil, app_errors.ErrLessonNotFound
	}
	return course, nil
}
