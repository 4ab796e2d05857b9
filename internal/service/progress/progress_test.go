package progress

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type courseRepoStub struct {
	course *models.Course
}

func (r *courseRepoStub) CourseByID(_ context.Context, id primitive.ObjectID) (*models.Course, error) {
	if r.course == nil || r.course.ID != id {
		return nil, app_errors.ErrCourseNotFound
	}
	return r.course, nil
}

// memProgress keeps a single enrollment the way the store applies updates.
type memProgress struct {
	doc      *models.UserProgress
	setCalls int
}

func (m *memProgress) find(userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	if m.doc == nil || m.doc.UserID != userID || m.doc.CourseID != courseID {
		return nil, app_errors.ErrNotEnrolled
	}
	cp := *m.doc
	cp.CompletedLessons = append([]string{}, m.doc.CompletedLessons...)
	return &cp, nil
}

func (m *memProgress) Progress(_ context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	return m.find(userID, courseID)
}

func (m *memProgress) MarkLesson(_ context.Context, userID, courseID primitive.ObjectID, lessonID string, completed bool) (*models.UserProgress, error) {
	if _, err := m.find(userID, courseID); err != nil {
		return nil, err
	}
	set := []string{}
	for _, id := range m.doc.CompletedLessons {
		if id != lessonID {
			set = append(set, id)
		}
	}
	if completed {
		set = append(set, lessonID)
	}
	m.doc.CompletedLessons = set
	return m.find(userID, courseID)
}

func (m *memProgress) SetCurrentLesson(_ context.Context, userID, courseID primitive.ObjectID, lessonID string) (*models.UserProgress, error) {
	if _, err := m.find(userID, courseID); err != nil {
		return nil, err
	}
	m.doc.CurrentLessonID = lessonID
	return m.find(userID, courseID)
}

func (m *memProgress) ResetProgress(_ context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error) {
	if _, err := m.find(userID, courseID); err != nil {
		return nil, err
	}
	m.doc.CompletedLessons = []string{}
	m.doc.Progress = 0
	m.doc.CompletedAt = nil
	m.doc.CurrentLessonID = ""
	return m.find(userID, courseID)
}

func (m *memProgress) SetProgressState(_ context.Context, _ primitive.ObjectID, progress float64, completedAt *time.Time) error {
	m.setCalls++
	m.doc.Progress = progress
	m.doc.CompletedAt = completedAt
	return nil
}

func threeLessonCourse() *models.Course {
	return &models.Course{
		ID: primitive.NewObjectID(),
		Modules: []models.Module{{ID: "m", Chapters: []models.Chapter{
			{ID: "c1", Lessons: []models.Lesson{{ID: "l1"}, {ID: "l2"}}},
			{ID: "c2", Lessons: []models.Lesson{{ID: "l3"}}},
		}}},
	}
}

func newFixture() (*ProgressService, *memProgress, *models.Course, primitive.ObjectID) {
	course := threeLessonCourse()
	userID := primitive.NewObjectID()
	store := &memProgress{doc: &models.UserProgress{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		CourseID:         course.ID,
		CompletedLessons: []string{},
	}}
	svc := NewProgressService(logger.NewNop(), &courseRepoStub{course: course}, store)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, store, course, userID
}

func TestMarkLesson_ProgressAndCompletion(t *testing.T) {
	svc, store, course, userID := newFixture()
	ctx := context.Background()

	p, err := svc.MarkLesson(ctx, userID, course.ID, "l1", true)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, p.Progress, 1e-9)
	assert.Nil(t, p.CompletedAt)

	_, err = svc.MarkLesson(ctx, userID, course.ID, "l1", true)
	require.NoError(t, err)
	_, err = svc.MarkLesson(ctx, userID, course.ID, "l2", true)
	require.NoError(t, err)
	p, err = svc.MarkLesson(ctx, userID, course.ID, "l3", true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Progress)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, 2026, p.CompletedAt.Year())
	assert.Equal(t, 1.0, store.doc.Progress)

	p, err = svc.MarkLesson(ctx, userID, course.ID, "l2", false)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, p.Progress, 1e-9)
	assert.Nil(t, p.CompletedAt)
	assert.Nil(t, store.doc.CompletedAt)
}

func TestMarkLesson_Errors(t *testing.T) {
	svc, _, course, userID := newFixture()
	ctx := context.Background()

	_, err := svc.MarkLesson(ctx, userID, course.ID, "nope", true)
	assert.ErrorIs(t, err, app_errors.ErrLessonNotFound)

	_, err = svc.MarkLesson(ctx, primitive.NewObjectID(), course.ID, "l1", true)
	assert.ErrorIs(t, err, app_errors.ErrNotEnrolled)

	_, err = svc.MarkLesson(ctx, userID, primitive.NewObjectID(), "l1", true)
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func TestProgress_RecomputesAfterCurriculumChange(t *testing.T) {
	svc, store, course, userID := newFixture()
	ctx := context.Background()

	for _, id := range []string{"l1", "l2"} {
		_, err := svc.MarkLesson(ctx, userID, course.ID, id, true)
		require.NoError(t, err)
	}
	calls := store.setCalls

	// l3 removed by the author: the remaining lessons are all complete.
	course.Modules[0].Chapters = course.Modules[0].Chapters[:1]

	p, err := svc.Progress(ctx, userID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Progress)
	assert.NotNil(t, p.CompletedAt)
	assert.Equal(t, calls+1, store.setCalls)

	_, err = svc.Progress(ctx, userID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, calls+1, store.setCalls)
}

func TestSetCurrentLessonAndReset(t *testing.T) {
	svc, _, course, userID := newFixture()
	ctx := context.Background()

	_, err := svc.SetCurrentLesson(ctx, userID, course.ID, "missing")
	assert.ErrorIs(t, err, app_errors.ErrLessonNotFound)

	p, err := svc.SetCurrentLesson(ctx, userID, course.ID, "l3")
	require.NoError(t, err)
	assert.Equal(t, "l3", p.CurrentLessonID)

	_, err = svc.MarkLesson(ctx, userID, course.ID, "l1", true)
	require.NoError(t, err)
	p, err = svc.ResetProgress(ctx, userID, course.ID)
	require.NoError(t, err)
	assert.Empty(t, p.CompletedLessons)
	assert.Zero(t, p.Progress)
	assert.Empty(t, p.CurrentLessonID)
}
