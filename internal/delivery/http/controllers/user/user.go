package user

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service interface {
	Profile(ctx context.Context, viewerID, userID primitive.ObjectID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error)
	Follow(ctx context.Context, followerID, followeeID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, followeeID primitive.ObjectID) error
	Followers(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error)
	Following(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error)
}

type Handler struct {
	log     logger.Log
	service Service
}

func NewHandler(log logger.Log, s Service) *Handler {
	return &Handler{log: log, service: s}
}

func (h *Handler) Profile(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "user_id")
	if !ok {
		return
	}
	p, err := h.service.Profile(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type profileRequest struct {
	Name      *string `json:"name" binding:"omitempty,notblank,max=100"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarKey *string `json:"avatar_key"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	u, err := h.service.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), models.ProfileUpdate{
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarKey: req.AvatarKey,
	})
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Follow(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.service.Follow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true})
}

func (h *Handler) Unfollow(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.service.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": false})
}

func (h *Handler) Followers(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "user_id")
	if !ok {
		return
	}
	list, err := h.service.Followers(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (h *Handler) Following(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "user_id")
	if !ok {
		return
	}
	list, err := h.service.Following(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}
