package middleware

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authStub struct {
	users map[string]*models.User
	err   error
}

func (a authStub) Authenticate(_ context.Context, token string) (*models.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	u, ok := a.users[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", app_errors.ErrUnauthorized)
	}
	return u, nil
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func whoami(c *gin.Context) {
	u := CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"user": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c).Hex(), "role": u.Role})
}

func TestAuthMiddleware(t *testing.T) {
	learner := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	mw := NewAuthMiddlewareProvider(logger.NewNop(), authStub{users: map[string]*models.User{"good": learner}}, "__session")

	r := gin.New()
	r.GET("/private", mw.AuthMiddleware, whoami)

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"bearer token", "Bearer good", "", http.StatusOK},
		{"session cookie", "", "good", http.StatusOK},
		{"unknown token", "Bearer bad", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic good", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "__session", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, learner.ID.Hex(), decode(t, w)["user"])
			}
		})
	}
}

func TestAuthMiddleware_ExpiredAndBrokenStore(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"expired", app_errors.ErrTokenExpired, http.StatusUnauthorized, app_errors.ErrTokenExpired.Error()},
		{"store down", fmt.Errorf("mongo: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddlewareProvider(logger.NewNop(), authStub{err: tt.err}, "")
			r := gin.New()
			r.GET("/private", mw.AuthMiddleware, whoami)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.msg, decode(t, w)["error"])
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	learner := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	mw := NewAuthMiddlewareProvider(logger.NewNop(), authStub{users: map[string]*models.User{"good": learner}}, "")

	r := gin.New()
	r.GET("/public", mw.OptionalAuth, whoami)

	for token, want := range map[string]string{"": "", "good": learner.ID.Hex(), "bad": ""} {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, token)
		assert.Equal(t, want, decode(t, w)["user"], token)
	}
}

func TestRequireRoles(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole}
	learner := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	mw := NewAuthMiddlewareProvider(logger.NewNop(), authStub{users: map[string]*models.User{
		"admin":   admin,
		"learner": learner,
	}}, "")

	r := gin.New()
	r.GET("/admin", mw.AuthMiddleware, RequireRoles(models.AdminRole), whoami)
	r.GET("/unguarded", RequireRoles(models.AdminRole), whoami)

	for token, want := range map[string]int{"admin": http.StatusOK, "learner": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unguarded", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{app_errors.Invalid("title is required"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", app_errors.ErrCourseNotFound), http.StatusNotFound},
		{app_errors.ErrNotEnrolled, http.StatusForbidden},
		{app_errors.ErrAlreadyEnrolled, http.StatusConflict},
		{app_errors.ErrSlugTaken, http.StatusConflict},
		{app_errors.ErrFileSize, http.StatusRequestEntityTooLarge},
		{app_errors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{app_errors.ErrInvalidSignature, http.StatusUnauthorized},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestFail_HidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/known", func(c *gin.Context) { Fail(c, logger.NewNop(), app_errors.Invalid("caption is too long")) })
	r.GET("/unknown", func(c *gin.Context) { Fail(c, logger.NewNop(), fmt.Errorf("mongo: socket closed")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/known", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "caption is too long", decode(t, w)["error"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestObjectIDParamAndPage(t *testing.T) {
	r := gin.New()
	r.GET("/items/:item_id", func(c *gin.Context) {
		id, ok := ObjectIDParam(c, "item_id")
		if !ok {
			return
		}
		limit, offset, ok := Page(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.Hex(), "limit": limit, "offset": offset})
	})

	id := primitive.NewObjectID().Hex()
	tests := []struct {
		path string
		want int
	}{
		{"/items/" + id + "?limit=10&offset=20", http.StatusOK},
		{"/items/" + id, http.StatusOK},
		{"/items/nope", http.StatusBadRequest},
		{"/items/" + id + "?limit=0", http.StatusBadRequest},
		{"/items/" + id + "?offset=-1", http.StatusBadRequest},
		{"/items/" + id + "?limit=ten", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id+"?limit=10&offset=20", nil))
	body := decode(t, w)
	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, float64(20), body["offset"])
}

func TestValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type query struct {
		AuthorID string `form:"author_id" binding:"omitempty,objectid"`
		Hashtag  string `form:"hashtag" binding:"omitempty,hashtag"`
	}
	type body struct {
		Title string `json:"title" binding:"required,notblank"`
	}

	r := gin.New()
	r.GET("/q", func(c *gin.Context) {
		var q query
		if err := c.ShouldBindQuery(&q); err != nil {
			BadRequest(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/b", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			BadRequest(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?author_id="+primitive.NewObjectID().Hex()+"&hashtag=%23GoLang", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?author_id=xyz", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "author_id must be a valid id", decode(t, w)["error"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?hashtag=no%20spaces", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "hashtag must be a valid hashtag", decode(t, w)["error"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/b", jsonBody(`{"title":"   "}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title cannot be blank", decode(t, w)["error"])
}
