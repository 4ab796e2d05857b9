package lesson

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressService interface {
	MarkLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, completed bool) (*models.UserProgress, error)
	SetCurrentLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) (*models.UserProgress, error)
	Progress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error)
	ResetProgress(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error)
}

type ProgressHandler struct {
	log     logger.Log
	service ProgressService
}

func NewProgressHandler(log logger.Log, service ProgressService) *ProgressHandler {
	return &ProgressHandler{log, service}
}

func (h *ProgressHandler) reply(c *gin.Context, p *models.UserProgress, err error) {
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	p, err := h.service.Progress(c.Request.Context(), middleware.CurrentUserID(c), courseID)
	h.reply(c, p, err)
}

type markRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// MarkLesson sets or clears the completion of one lesson.
func (h *ProgressHandler) MarkLesson(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	p, err := h.service.MarkLesson(c.Request.Context(), middleware.CurrentUserID(c), courseID, c.Param("lesson_id"), *req.Completed)
	h.reply(c, p, err)
}

func (h *ProgressHandler) SetCurrentLesson(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	p, err := h.service.SetCurrentLesson(c.Request.Context(), middleware.CurrentUserID(c), courseID, c.Param("lesson_id"))
	h.reply(c, p, err)
}

func (h *ProgressHandler) ResetProgress(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	p, err := h.service.ResetProgress(c.Request.Context(), middleware.CurrentUserID(c), courseID)
	h.reply(c, p, err)
}
