package upload

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Service interface {
	Presign(ctx context.Context, owner *models.User, req models.PresignRequest) (*models.PresignedUpload, error)
	Confirm(ctx context.Context, owner *models.User, key string) (*models.ObjectInfo, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, owner *models.User, key string) error
}

type Handler struct {
	log     logger.Log
	service Service
}

func NewHandler(log logger.Log, s Service) *Handler {
	return &Handler{log: log, service: s}
}

type presignRequest struct {
	Kind        string `json:"kind" binding:"required"`
	Filename    string `json:"filename" binding:"required,notblank,max=255"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// Presign hands out a short-lived PUT URL; the client uploads straight to the
// object store and then calls Confirm.
func (h *Handler) Presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	up, err := h.service.Presign(c.Request.Context(), middleware.CurrentUser(c), models.PresignRequest{
		Kind:        models.UploadKind(req.Kind),
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, up)
}

type keyRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

func (h *Handler) Confirm(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	info, err := h.service.Confirm(c.Request.Context(), middleware.CurrentUser(c), req.ObjectKey)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) URL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	url, err := h.service.URL(c.Request.Context(), key)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentUser(c), key); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
