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

type ResourceService interface {
	AddResource(ctx context.Context, courseID primitive.ObjectID, lessonID string, in models.ResourceInput) (*models.Course, error)
	UpdateResource(ctx context.Context, courseID primitive.ObjectID, lessonID, resourceID string, in models.ResourceInput) (*models.Course, error)
	DeleteResource(ctx context.Context, courseID primitive.ObjectID, lessonID, resourceID string) (*models.Course, error)
}

type ContentHandler struct {
	log     logger.Log
	service ResourceService
}

func NewContentHandler(log logger.Log, service ResourceService) *ContentHandler {
	return &ContentHandler{log: log, service: service}
}

type resourceRequest struct {
	Title     string `json:"title" binding:"required,notblank,max=200"`
	Type      string `json:"type" binding:"required,oneof=file link pdf"`
	URL       string `json:"url" binding:"omitempty,url"`
	ObjectKey string `json:"object_key"`
}

func (r resourceRequest) input() models.ResourceInput {
	return models.ResourceInput{Title: r.Title, Type: r.Type, URL: r.URL, ObjectKey: r.ObjectKey}
}

func (h *ContentHandler) CreateResource(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.AddResource(c.Request.Context(), courseID, c.Param("lesson_id"), req.input())
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ContentHandler) UpdateResource(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateResource(c.Request.Context(), courseID, c.Param("lesson_id"), c.Param("resource_id"), req.input())
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ContentHandler) DeleteResource(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteResource(c.Request.Context(), courseID, c.Param("lesson_id"), c.Param("resource_id"))
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
