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

type QueryService interface {
	ListPublished(ctx context.Context, f models.CourseFilter) ([]models.CourseSummary, int, error)
	CourseByID(ctx context.Context, viewer *models.User, id primitive.ObjectID) (*models.CourseDetail, error)
	CourseBySlug(ctx context.Context, viewer *models.User, slug string) (*models.CourseDetail, error)
}

type QueryHandler struct {
	log     logger.Log
	service QueryService
}

func NewQueryHandler(log logger.Log, s QueryService) *QueryHandler {
	return &QueryHandler{
		log:     log,
		service: s,
	}
}

func (h *QueryHandler) ListCourses(c *gin.Context) {
	limit, offset, ok := middleware.Page(c)
	if !ok {
		return
	}
	courses, total, err := h.service.ListPublished(c.Request.Context(), models.CourseFilter{
		Category: c.Query("category"),
		Level:    c.Query("level"),
		Tag:      c.Query("tag"),
		Query:    c.Query("query"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"courses": courses,
	})
}

// CourseByID accepts an id or a slug in the same path segment.
func (h *QueryHandler) CourseByID(c *gin.Context) {
	ref := c.Param("course_id")
	viewer := middleware.CurrentUser(c)

	var (
		detail *models.CourseDetail
		err    error
	)
	if id, perr := primitive.ObjectIDFromHex(ref); perr == nil {
		detail, err = h.service.CourseByID(c.Request.Context(), viewer, id)
	} else {
		detail, err = h.service.CourseBySlug(c.Request.Context(), viewer, ref)
	}
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
