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

type ManagementService interface {
	CreateCourse(ctx context.Context, authorID primitive.ObjectID, in models.CourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, id primitive.ObjectID, upd models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error
	Publish(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	Unpublish(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	CourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	ListCourses(ctx context.Context, f models.CourseFilter) ([]models.CourseSummary, int, error)
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     l,
		service: s,
	}
}

type newCourseRequest struct {
	Title            string   `json:"title" binding:"required,notblank,max=200"`
	Description      string   `json:"description" binding:"max=20000"`
	ShortDescription string   `json:"short_description" binding:"max=500"`
	Price            float64  `json:"price" binding:"gte=0"`
	DiscountPrice    *float64 `json:"discount_price" binding:"omitempty,gte=0"`
	Currency         string   `json:"currency" binding:"omitempty,len=3"`
	Level            string   `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags" binding:"max=20"`
	Language         string   `json:"language"`
	ThumbnailKey     string   `json:"thumbnail_key"`
	PreviewVideoKey  string   `json:"preview_video_key"`
	Requirements     []string `json:"requirements"`
	Outcomes         []string `json:"outcomes"`
}

func (h *ManagementHandler) CreateCourse(c *gin.Context) {
	var input newCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), middleware.CurrentUserID(c), models.CourseInput{
		Title:            input.Title,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		DiscountPrice:    input.DiscountPrice,
		Currency:         input.Currency,
		Level:            input.Level,
		Category:         input.Category,
		Tags:             input.Tags,
		Language:         input.Language,
		ThumbnailKey:     input.ThumbnailKey,
		PreviewVideoKey:  input.PreviewVideoKey,
		Requirements:     input.Requirements,
		Outcomes:         input.Outcomes,
	})
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

type updateCourseRequest struct {
	Title            *string  `json:"title" binding:"omitempty,notblank,max=200"`
	Description      *string  `json:"description" binding:"omitempty,max=20000"`
	ShortDescription *string  `json:"short_description" binding:"omitempty,max=500"`
	Price            *float64 `json:"price" binding:"omitempty,gte=0"`
	DiscountPrice    *float64 `json:"discount_price" binding:"omitempty,gte=0"`
	Currency         *string  `json:"currency" binding:"omitempty,len=3"`
	Level            *string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Category         *string  `json:"category"`
	Tags             []string `json:"tags" binding:"omitempty,max=20"`
	Language         *string  `json:"language"`
	ThumbnailKey     *string  `json:"thumbnail_key"`
	PreviewVideoKey  *string  `json:"preview_video_key"`
	Requirements     []string `json:"requirements"`
	Outcomes         []string `json:"outcomes"`
}

func (h *ManagementHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var input updateCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), courseID, models.CourseUpdate{
		Title:            input.Title,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		DiscountPrice:    input.DiscountPrice,
		Currency:         input.Currency,
		Level:            input.Level,
		Category:         input.Category,
		Tags:             input.Tags,
		Language:         input.Language,
		ThumbnailKey:     input.ThumbnailKey,
		PreviewVideoKey:  input.PreviewVideoKey,
		Requirements:     input.Requirements,
		Outcomes:         input.Outcomes,
	})
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), courseID); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ManagementHandler) PublishCourse(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.Publish(c.Request.Context(), courseID)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) UnpublishCourse(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.Unpublish(c.Request.Context(), courseID)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// CourseByID is the authoring view: drafts included, nothing stripped.
func (h *ManagementHandler) CourseByID(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.CourseByID(c.Request.Context(), courseID)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// ListCourses lists every course; ?mine=true narrows to the caller's own.
func (h *ManagementHandler) ListCourses(c *gin.Context) {
	limit, offset, ok := middleware.Page(c)
	if !ok {
		return
	}
	f := models.CourseFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Level:    c.Query("level"),
		Tag:      c.Query("tag"),
		Query:    c.Query("query"),
		Limit:    limit,
		Offset:   offset,
	}
	if c.Query("mine") == "true" {
		f.AuthorID = middleware.CurrentUserID(c)
	}
	courses, total, err := h.service.ListCourses(c.Request.Context(), f)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"courses": courses,
	})
}
