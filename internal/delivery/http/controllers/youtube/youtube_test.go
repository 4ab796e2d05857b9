package youtube

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type serviceStub struct {
	Service
	courses      map[primitive.ObjectID]*models.YouTubeCourse
	lists        []models.CourseFilter
	addedLessons []models.LessonInput
	lessonPatch  []models.LessonUpdate
}

func (s *serviceStub) CourseByID(_ context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return c, nil
}

func (s *serviceStub) ListCourses(_ context.Context, f models.CourseFilter) ([]models.YouTubeCourse, int, error) {
	s.lists = append(s.lists, f)
	return []models.YouTubeCourse{}, 0, nil
}

func (s *serviceStub) AddLesson(_ context.Context, id primitive.ObjectID, _, _ string, in models.LessonInput) (*models.YouTubeCourse, error) {
	s.addedLessons = append(s.addedLessons, in)
	if _, err := s.CourseByID(context.Background(), id); err != nil {
		return nil, err
	}
	return s.courses[id], nil
}

func (s *serviceStub) UpdateLesson(_ context.Context, id primitive.ObjectID, _ string, upd models.LessonUpdate) (*models.YouTubeCourse, error) {
	s.lessonPatch = append(s.lessonPatch, upd)
	return s.courses[id], nil
}

func setup(t *testing.T, s Service, caller *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	h := NewHandler(logger.NewNop(), s)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.ClientIDCtx, caller.ID)
			c.Set(middleware.ClientUserCtx, caller)
		}
	})
	r.GET("/youtube-courses", h.ListCourses)
	r.GET("/youtube-courses/:course_id", h.CourseByID)
	r.POST("/youtube-courses/:course_id/modules/:module_id/chapters/:chapter_id/lessons", h.CreateLesson)
	r.PATCH("/youtube-courses/:course_id/lessons/:lesson_id", h.UpdateLesson)
	return r
}

func do(r *gin.Engine, method, path, body string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w.Code
}

func TestCourseByID_HidesDrafts(t *testing.T) {
	draft := &models.YouTubeCourse{ID: primitive.NewObjectID(), Status: models.StatusDraft}
	live := &models.YouTubeCourse{ID: primitive.NewObjectID(), Status: models.StatusPublished}
	s := &serviceStub{courses: map[primitive.ObjectID]*models.YouTubeCourse{draft.ID: draft, live.ID: live}}

	anon := setup(t, s, nil)
	assert.Equal(t, http.StatusOK, do(anon, http.MethodGet, "/youtube-courses/"+live.ID.Hex(), ""))
	assert.Equal(t, http.StatusNotFound, do(anon, http.MethodGet, "/youtube-courses/"+draft.ID.Hex(), ""))
	assert.Equal(t, http.StatusNotFound, do(anon, http.MethodGet, "/youtube-courses/"+primitive.NewObjectID().Hex(), ""))
	assert.Equal(t, http.StatusBadRequest, do(anon, http.MethodGet, "/youtube-courses/go-basics", ""))

	admin := setup(t, s, &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole})
	assert.Equal(t, http.StatusOK, do(admin, http.MethodGet, "/youtube-courses/"+draft.ID.Hex(), ""))
}

func TestListCourses_StatusOnlyForAdmins(t *testing.T) {
	s := &serviceStub{}

	learner := setup(t, s, &models.User{ID: primitive.NewObjectID(), Role: models.UserRole})
	require.Equal(t, http.StatusOK, do(learner, http.MethodGet, "/youtube-courses?status=draft", ""))

	admin := setup(t, s, &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole})
	require.Equal(t, http.StatusOK, do(admin, http.MethodGet, "/youtube-courses?status=draft", ""))

	require.Len(t, s.lists, 2)
	assert.Equal(t, models.StatusPublished, s.lists[0].Status)
	assert.Equal(t, models.StatusDraft, s.lists[1].Status)
}

func TestLessons_VideoURLBinding(t *testing.T) {
	course := &models.YouTubeCourse{ID: primitive.NewObjectID()}
	s := &serviceStub{courses: map[primitive.ObjectID]*models.YouTubeCourse{course.ID: course}}
	r := setup(t, s, &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole})
	lessons := "/youtube-courses/" + course.ID.Hex() + "/modules/m1/chapters/c1/lessons"

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, lessons, `{"title":"Intro","video_url":"https://youtu.be/dQw4w9WgXcQ"}`))
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, lessons, `{"title":"Intro"}`))
	require.Len(t, s.addedLessons, 1)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", s.addedLessons[0].VideoURL)

	patch := "/youtube-courses/" + course.ID.Hex() + "/lessons/l1"
	assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, patch, `{"title":"Renamed"}`))
	require.Len(t, s.lessonPatch, 1)
	assert.Nil(t, s.lessonPatch[0].VideoURL)
	require.NotNil(t, s.lessonPatch[0].Title)
	assert.Equal(t, "Renamed", *s.lessonPatch[0].Title)
}
