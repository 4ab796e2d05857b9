package post

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

// serviceStub implements only what a test needs; other calls panic.
type serviceStub struct {
	PostService
	feed    func(viewerID primitive.ObjectID, q models.FeedQuery) ([]models.PostView, error)
	setLike func(userID, postID primitive.ObjectID, on bool) (models.ToggleResult, error)
	create  func(authorID primitive.ObjectID, in models.PostInput) (*models.PostView, error)
	update  func(userID, id primitive.ObjectID, upd models.PostUpdate) (*models.PostView, error)
}

func (s serviceStub) UpdatePost(_ context.Context, userID, id primitive.ObjectID, upd models.PostUpdate) (*models.PostView, error) {
	return s.update(userID, id, upd)
}

func (s serviceStub) Feed(_ context.Context, viewerID primitive.ObjectID, q models.FeedQuery) ([]models.PostView, error) {
	return s.feed(viewerID, q)
}

func (s serviceStub) SetLike(_ context.Context, userID, postID primitive.ObjectID, on bool) (models.ToggleResult, error) {
	return s.setLike(userID, postID, on)
}

func (s serviceStub) CreatePost(_ context.Context, authorID primitive.ObjectID, in models.PostInput) (*models.PostView, error) {
	return s.create(authorID, in)
}

func setup(t *testing.T, s PostService, caller primitive.ObjectID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	h := NewPostHandler(logger.NewNop(), s)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if !caller.IsZero() {
			c.Set(middleware.ClientIDCtx, caller)
			c.Set(middleware.ClientUserCtx, &models.User{ID: caller, Role: models.UserRole})
		}
	})
	r.GET("/posts", h.Feed)
	r.POST("/posts", h.CreatePost)
	r.PATCH("/posts/:post_id", h.UpdatePost)
	r.PUT("/posts/:post_id/like", h.Like)
	r.DELETE("/posts/:post_id/like", h.Like)
	return r
}

func TestFeed_BindsQuery(t *testing.T) {
	viewer, author := primitive.NewObjectID(), primitive.NewObjectID()
	var got models.FeedQuery
	r := setup(t, serviceStub{feed: func(v primitive.ObjectID, q models.FeedQuery) ([]models.PostView, error) {
		assert.Equal(t, viewer, v)
		got = q
		return []models.PostView{}, nil
	}}, viewer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts?author_id="+author.Hex()+"&limit=5&offset=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.FeedQuery{AuthorID: author, Limit: 5, Offset: 10}, got)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts?author_id=123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeed_FollowingNeedsViewer(t *testing.T) {
	r := setup(t, serviceStub{feed: func(v primitive.ObjectID, q models.FeedQuery) ([]models.PostView, error) {
		if q.Following && v.IsZero() {
			return nil, app_errors.ErrUnauthorized
		}
		return nil, nil
	}}, primitive.NilObjectID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts?following=true", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLike_MethodSelectsState(t *testing.T) {
	caller, postID := primitive.NewObjectID(), primitive.NewObjectID()
	var states []bool
	r := setup(t, serviceStub{setLike: func(u, p primitive.ObjectID, on bool) (models.ToggleResult, error) {
		assert.Equal(t, caller, u)
		if p != postID {
			return models.ToggleResult{}, app_errors.ErrPostNotFound
		}
		states = append(states, on)
		if on {
			return models.ToggleResult{Active: true, Count: 1}, nil
		}
		return models.ToggleResult{}, nil
	}}, caller)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/posts/"+postID.Hex()+"/like", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"active":true,"count":1}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/posts/"+postID.Hex()+"/like", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []bool{true, false}, states)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/posts/"+primitive.NewObjectID().Hex()+"/like", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost(t *testing.T) {
	caller := primitive.NewObjectID()
	r := setup(t, serviceStub{create: func(a primitive.ObjectID, in models.PostInput) (*models.PostView, error) {
		assert.Equal(t, caller, a)
		return &models.PostView{Post: models.Post{ID: primitive.NewObjectID(), AuthorID: a, Caption: in.Caption, Media: in.Media}}, nil
	}}, caller)

	body := `{"caption":"hello #go","media":[{"object_key":"post-media/` + caller.Hex() + `/a.png","type":"image"}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var view models.PostView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "hello #go", view.Caption)
	require.Len(t, view.Media, 1)
	assert.Equal(t, "image", view.Media[0].Type)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"media":[{"object_key":"k","type":"audio"}]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePost_PartialBody(t *testing.T) {
	caller, postID := primitive.NewObjectID(), primitive.NewObjectID()
	var got []models.PostUpdate
	r := setup(t, serviceStub{update: func(u, id primitive.ObjectID, upd models.PostUpdate) (*models.PostView, error) {
		assert.Equal(t, caller, u)
		assert.Equal(t, postID, id)
		got = append(got, upd)
		return &models.PostView{Post: models.Post{ID: id, AuthorID: u}}, nil
	}}, caller)

	patch := func(body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/posts/"+postID.Hex(), strings.NewReader(body)))
		return w.Code
	}

	require.Equal(t, http.StatusOK, patch(`{"caption":"new words"}`))
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Caption)
	assert.Equal(t, "new words", *got[0].Caption)
	assert.Nil(t, got[0].Media)
	assert.Nil(t, got[0].Hashtags)

	require.Equal(t, http.StatusOK, patch(`{"media":[]}`))
	require.Len(t, got, 2)
	assert.Nil(t, got[1].Caption)
	require.NotNil(t, got[1].Media)
	assert.Empty(t, *got[1].Media)

	assert.Equal(t, http.StatusBadRequest, patch(`{"media":[{"object_key":"k","type":"audio"}]}`))
	assert.Equal(t, http.StatusBadRequest, patch(`{"hashtags":["has space"]}`))
	assert.Len(t, got, 2)
}
