package course

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionService interface {
	Enroll(ctx context.Context, userID, courseID primitive.ObjectID) (*models.UserProgress, error)
	Enrollments(ctx context.Context, userID primitive.ObjectID) ([]models.Enrollment, error)
}

type SubscriptionHandler struct {
	log     logger.Log
	service SubscriptionService
}

func NewSubscriptionHandler(log logger.Log, s SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		log:     log,
		service: s,
	}
}

func (h *SubscriptionHandler) Enroll(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	progress, err := h.service.Enroll(c.Request.Context(), middleware.CurrentUserID(c), courseID)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

func (h *SubscriptionHandler) Enrollments(c *gin.Context) {
	list, err := h.service.Enrollments(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": list})
}
