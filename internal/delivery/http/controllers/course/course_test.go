package course

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type managementStub struct {
	ManagementService
	create func(authorID primitive.ObjectID, in models.CourseInput) (*models.Course, error)
	update func(id primitive.ObjectID, upd models.CourseUpdate) (*models.Course, error)
	list   func(f models.CourseFilter) ([]models.CourseSummary, int, error)
	delete func(id primitive.ObjectID) error
}

func (s managementStub) CreateCourse(_ context.Context, authorID primitive.ObjectID, in models.CourseInput) (*models.Course, error) {
	return s.create(authorID, in)
}

func (s managementStub) UpdateCourse(_ context.Context, id primitive.ObjectID, upd models.CourseUpdate) (*models.Course, error) {
	return s.update(id, upd)
}

func (s managementStub) ListCourses(_ context.Context, f models.CourseFilter) ([]models.CourseSummary, int, error) {
	return s.list(f)
}

func (s managementStub) DeleteCourse(_ context.Context, id primitive.ObjectID) error {
	return s.delete(id)
}

type queryStub struct {
	byID   func(viewer *models.User, id primitive.ObjectID) (*models.CourseDetail, error)
	bySlug func(viewer *models.User, slug string) (*models.CourseDetail, error)
}

func (s queryStub) ListPublished(context.Context, models.CourseFilter) ([]models.CourseSummary, int, error) {
	return []models.CourseSummary{}, 0, nil
}

func (s queryStub) CourseByID(_ context.Context, viewer *models.User, id primitive.ObjectID) (*models.CourseDetail, error) {
	return s.byID(viewer, id)
}

func (s queryStub) CourseBySlug(_ context.Context, viewer *models.User, slug string) (*models.CourseDetail, error) {
	return s.bySlug(viewer, slug)
}

type ratingFunc func(userID, courseID primitive.ObjectID, value int) (float64, int, error)

func (f ratingFunc) Rate(_ context.Context, userID, courseID primitive.ObjectID, value int) (float64, int, error) {
	return f(userID, courseID, value)
}

func engine(t *testing.T, caller *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.ClientIDCtx, caller.ID)
			c.Set(middleware.ClientUserCtx, caller)
		}
	})
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCourse(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole}
	var got models.CourseInput
	h := NewManagementHandler(logger.NewNop(), managementStub{create: func(a primitive.ObjectID, in models.CourseInput) (*models.Course, error) {
		assert.Equal(t, admin.ID, a)
		got = in
		return &models.Course{ID: primitive.NewObjectID(), Title: in.Title, Slug: "go-101"}, nil
	}})
	r := engine(t, admin)
	r.POST("/admin/courses", h.CreateCourse)

	w := serve(r, http.MethodPost, "/admin/courses", `{"title":"Go 101","price":19.5,"tags":["go"],"level":"beginner"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.CourseInput{Title: "Go 101", Price: 19.5, Tags: []string{"go"}, Level: models.LevelBeginner}, got)

	for _, body := range []string{
		`{"title":"   "}`,
		`{"title":"x","price":-1}`,
		`{"title":"x","level":"expert"}`,
		`{"title":"x","currency":"dollars"}`,
	} {
		assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/admin/courses", body).Code, body)
	}
}

func TestUpdateCourse_OnlySentFields(t *testing.T) {
	id := primitive.NewObjectID()
	var got models.CourseUpdate
	h := NewManagementHandler(logger.NewNop(), managementStub{update: func(cid primitive.ObjectID, upd models.CourseUpdate) (*models.Course, error) {
		if cid != id {
			return nil, app_errors.ErrCourseNotFound
		}
		got = upd
		return &models.Course{ID: cid}, nil
	}})
	r := engine(t, &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole})
	r.PATCH("/admin/courses/:course_id", h.UpdateCourse)

	w := serve(r, http.MethodPatch, "/admin/courses/"+id.Hex(), `{"price":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, got.Price)
	assert.Equal(t, 0.0, *got.Price)
	assert.Nil(t, got.Title)
	assert.Nil(t, got.ThumbnailKey)
	assert.Nil(t, got.Tags)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPatch, "/admin/courses/"+id.Hex(), `{"title":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPatch, "/admin/courses/nope", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPatch, "/admin/courses/"+primitive.NewObjectID().Hex(), `{}`).Code)
}

func TestListAndDeleteCourses(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole}
	var filters []models.CourseFilter
	var deleted []primitive.ObjectID
	h := NewManagementHandler(logger.NewNop(), managementStub{
		list: func(f models.CourseFilter) ([]models.CourseSummary, int, error) {
			filters = append(filters, f)
			return []models.CourseSummary{{Title: "Go"}}, 7, nil
		},
		delete: func(id primitive.ObjectID) error {
			deleted = append(deleted, id)
			return nil
		},
	})
	r := engine(t, admin)
	r.GET("/admin/courses", h.ListCourses)
	r.DELETE("/admin/courses/:course_id", h.DeleteCourse)

	w := serve(r, http.MethodGet, "/admin/courses?mine=true&status=draft&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Total   int                    `json:"total"`
		Courses []models.CourseSummary `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Total)
	require.Len(t, filters, 1)
	assert.Equal(t, admin.ID, filters[0].AuthorID)
	assert.Equal(t, models.StatusDraft, filters[0].Status)
	assert.Equal(t, 5, filters[0].Limit)

	serve(r, http.MethodGet, "/admin/courses", "")
	require.Len(t, filters, 2)
	assert.True(t, filters[1].AuthorID.IsZero())

	id := primitive.NewObjectID()
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/admin/courses/"+id.Hex(), "").Code)
	assert.Equal(t, []primitive.ObjectID{id}, deleted)
}

func TestCourseByID_IDOrSlug(t *testing.T) {
	id := primitive.NewObjectID()
	var calls []string
	s := queryStub{
		byID: func(_ *models.User, cid primitive.ObjectID) (*models.CourseDetail, error) {
			calls = append(calls, "id:"+cid.Hex())
			return &models.CourseDetail{Course: &models.Course{ID: cid}}, nil
		},
		bySlug: func(_ *models.User, slug string) (*models.CourseDetail, error) {
			calls = append(calls, "slug:"+slug)
			if slug == "missing" {
				return nil, app_errors.ErrCourseNotFound
			}
			return &models.CourseDetail{Course: &models.Course{Slug: slug}}, nil
		},
	}
	r := engine(t, nil)
	r.GET("/courses/:course_id", NewQueryHandler(logger.NewNop(), s).CourseByID)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/courses/"+id.Hex(), "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/courses/go-from-zero", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/courses/missing", "").Code)
	assert.Equal(t, []string{"id:" + id.Hex(), "slug:go-from-zero", "slug:missing"}, calls)
}

func TestCourseByID_PassesViewer(t *testing.T) {
	viewer := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	var seen *models.User
	s := queryStub{bySlug: func(v *models.User, slug string) (*models.CourseDetail, error) {
		seen = v
		return &models.CourseDetail{Course: &models.Course{Slug: slug}, IsEnrolled: true}, nil
	}}
	r := engine(t, viewer)
	r.GET("/courses/:course_id", NewQueryHandler(logger.NewNop(), s).CourseByID)

	w := serve(r, http.MethodGet, "/courses/go", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, viewer, seen)

	var detail map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, true, detail["is_enrolled"])
	assert.Equal(t, "go", detail["slug"])
}

func TestRateCourse(t *testing.T) {
	caller := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	courseID := primitive.NewObjectID()
	h := NewRatingHandler(logger.NewNop(), ratingFunc(func(u, c primitive.ObjectID, v int) (float64, int, error) {
		assert.Equal(t, caller.ID, u)
		if c != courseID {
			return 0, 0, app_errors.ErrNotEnrolled
		}
		return 4.5, 2, nil
	}))
	r := engine(t, caller)
	r.POST("/courses/:course_id/rating", h.RateCourse)

	w := serve(r, http.MethodPost, "/courses/"+courseID.Hex()+"/rating", `{"value":4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rating":4.5,"ratings_count":2,"user_rating":4}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/courses/"+courseID.Hex()+"/rating", `{"value":6}`).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/courses/"+primitive.NewObjectID().Hex()+"/rating", `{"value":3}`).Code)
}
