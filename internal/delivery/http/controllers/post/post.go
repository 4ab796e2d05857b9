package post

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostService interface {
	CreatePost(ctx context.Context, authorID primitive.ObjectID, in models.PostInput) (*models.PostView, error)
	PostByID(ctx context.Context, viewerID, id primitive.ObjectID) (*models.PostView, error)
	UpdatePost(ctx context.Context, userID, id primitive.ObjectID, upd models.PostUpdate) (*models.PostView, error)
	DeletePost(ctx context.Context, user *models.User, id primitive.ObjectID) error
	Feed(ctx context.Context, viewerID primitive.ObjectID, q models.FeedQuery) ([]models.PostView, error)
	SavedPosts(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]models.PostView, error)
	SetLike(ctx context.Context, userID, postID primitive.ObjectID, liked bool) (models.ToggleResult, error)
	SetSave(ctx context.Context, userID, postID primitive.ObjectID, saved bool) (models.ToggleResult, error)
}

type PostHandler struct {
	log     logger.Log
	service PostService
}

func NewPostHandler(log logger.Log, s PostService) *PostHandler {
	return &PostHandler{log: log, service: s}
}

type mediaRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=image video"`
}

type postRequest struct {
	Caption  string         `json:"caption" binding:"max=2200"`
	Media    []mediaRequest `json:"media" binding:"max=10,dive"`
	Hashtags []string       `json:"hashtags" binding:"max=30,dive,hashtag"`
}

func (r postRequest) input() models.PostInput {
	in := models.PostInput{Caption: r.Caption, Hashtags: r.Hashtags}
	for _, m := range r.Media {
		in.Media = append(in.Media, models.Media{ObjectKey: m.ObjectKey, Type: m.Type})
	}
	return in
}

// postPatchRequest leaves absent keys untouched; "media": [] clears the
// attachments.
type postPatchRequest struct {
	Caption  *string         `json:"caption" binding:"omitempty,max=2200"`
	Media    *[]mediaRequest `json:"media" binding:"omitempty,max=10,dive"`
	Hashtags *[]string       `json:"hashtags" binding:"omitempty,max=30,dive,hashtag"`
}

func (r postPatchRequest) update() models.PostUpdate {
	upd := models.PostUpdate{Caption: r.Caption, Hashtags: r.Hashtags}
	if r.Media != nil {
		media := make([]models.Media, 0, len(*r.Media))
		for _, m := range *r.Media {
			media = append(media, models.Media{ObjectKey: m.ObjectKey, Type: m.Type})
		}
		upd.Media = &media
	}
	return upd
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), middleware.CurrentUserID(c), req.input())
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "post_id")
	if !ok {
		return
	}
	post, err := h.service.PostByID(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "post_id")
	if !ok {
		return
	}
	var req postPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	post, err := h.service.UpdatePost(c.Request.Context(), middleware.CurrentUserID(c), id, req.update())
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "post_id")
	if !ok {
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type feedQuery struct {
	AuthorID  string `form:"author_id" binding:"omitempty,objectid"`
	Following bool   `form:"following"`
	Hashtag   string `form:"hashtag" binding:"omitempty,hashtag"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

// Feed serves the global feed, or one narrowed by author_id, following=true
// or hashtag.
func (h *PostHandler) Feed(c *gin.Context) {
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	fq := models.FeedQuery{Following: q.Following, Hashtag: q.Hashtag, Limit: q.Limit, Offset: q.Offset}
	if q.AuthorID != "" {
		fq.AuthorID, _ = primitive.ObjectIDFromHex(q.AuthorID)
	}
	posts, err := h.service.Feed(c.Request.Context(), middleware.CurrentUserID(c), fq)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) SavedPosts(c *gin.Context) {
	limit, offset, ok := middleware.Page(c)
	if !ok {
		return
	}
	posts, err := h.service.SavedPosts(c.Request.Context(), middleware.CurrentUserID(c), limit, offset)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// toggle serves PUT (on) and DELETE (off) for likes and saves.
func (h *PostHandler) toggle(c *gin.Context, set func(ctx context.Context, userID, postID primitive.ObjectID, on bool) (models.ToggleResult, error)) {
	id, ok := middleware.ObjectIDParam(c, "post_id")
	if !ok {
		return
	}
	res, err := set(c.Request.Context(), middleware.CurrentUserID(c), id, c.Request.Method != http.MethodDelete)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) Like(c *gin.Context) { h.toggle(c, h.service.SetLike) }

func (h *PostHandler) Save(c *gin.Context) { h.toggle(c, h.service.SetSave) }
