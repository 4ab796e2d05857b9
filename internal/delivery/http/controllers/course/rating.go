package course

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingService interface {
	Rate(ctx context.Context, userID, courseID primitive.ObjectID, value int) (float64, int, error)
}

type RatingHandler struct {
	log     logger.Log
	service RatingService
}

func NewRatingHandler(log logger.Log, s RatingService) *RatingHandler {
	return &RatingHandler{
		log:     log,
		service: s,
	}
}

type rateRequest struct {
	Value int `json:"value" binding:"required,min=1,max=5"`
}

func (h *RatingHandler) RateCourse(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var input rateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.BadRequest(c, err)
		return
	}

	rating, count, err := h.service.Rate(c.Request.Context(), middleware.CurrentUserID(c), courseID, input.Value)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rating":        rating,
		"ratings_count": count,
		"user_rating":   input.Value,
	})
}
