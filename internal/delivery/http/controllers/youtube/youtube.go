package youtube

import (
	"Learnify/internal/delivery/http/controllers/lesson"
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service interface {
	CreateCourse(ctx context.Context, authorID primitive.ObjectID, in models.YouTubeCourseInput) (*models.YouTubeCourse, error)
	UpdateCourse(ctx context.Context, id primitive.ObjectID, upd models.YouTubeCourseUpdate) (*models.YouTubeCourse, error)
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error
	Publish(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error)
	Unpublish(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error)
	CourseByID(ctx context.Context, id primitive.ObjectID) (*models.YouTubeCourse, error)
	ListCourses(ctx context.Context, f models.CourseFilter) ([]models.YouTubeCourse, int, error)

	AddModule(ctx context.Context, courseID primitive.ObjectID, in models.ModuleInput) (*models.YouTubeCourse, error)
	UpdateModule(ctx context.Context, courseID primitive.ObjectID, moduleID string, upd models.ModuleUpdate) (*models.YouTubeCourse, error)
	DeleteModule(ctx context.Context, courseID primitive.ObjectID, moduleID string) (*models.YouTubeCourse, error)
	AddChapter(ctx context.Context, courseID primitive.ObjectID, moduleID string, in models.ChapterInput) (*models.YouTubeCourse, error)
	UpdateChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.ChapterInput) (*models.YouTubeCourse, error)
	DeleteChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string) (*models.YouTubeCourse, error)
	AddLesson(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.LessonInput) (*models.YouTubeCourse, error)
	UpdateLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string, upd models.LessonUpdate) (*models.YouTubeCourse, error)
	DeleteLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string) (*models.YouTubeCourse, error)
}

type Handler struct {
	log     logger.Log
	service Service
}

func NewHandler(log logger.Log, s Service) *Handler {
	return &Handler{log: log, service: s}
}

type courseRequest struct {
	Title        string   `json:"title" binding:"required,notblank,max=200"`
	Description  string   `json:"description" binding:"max=20000"`
	Level        string   `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags" binding:"max=20"`
	ThumbnailURL string   `json:"thumbnail_url" binding:"omitempty,url"`
}

type updateRequest struct {
	Title        *string  `json:"title" binding:"omitempty,notblank,max=200"`
	Description  *string  `json:"description" binding:"omitempty,max=20000"`
	Level        *string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Category     *string  `json:"category"`
	Tags         []string `json:"tags" binding:"omitempty,max=20"`
	ThumbnailURL *string  `json:"thumbnail_url" binding:"omitempty,url"`
}

// lessonRequest needs a video link, every lesson here is a YouTube video.
type lessonRequest struct {
	lesson.LessonRequest
	VideoURL string `json:"video_url" binding:"required"`
}

func (h *Handler) respond(c *gin.Context, status int, course *models.YouTubeCourse, err error) {
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(status, course)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), middleware.CurrentUserID(c), models.YouTubeCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Level:        req.Level,
		Category:     req.Category,
		Tags:         req.Tags,
		ThumbnailURL: req.ThumbnailURL,
	})
	h.respond(c, http.StatusCreated, course, err)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), id, models.YouTubeCourseUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Level:        req.Level,
		Category:     req.Category,
		Tags:         req.Tags,
		ThumbnailURL: req.ThumbnailURL,
	})
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), id); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Publish(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.Publish(c.Request.Context(), id)
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) Unpublish(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.Unpublish(c.Request.Context(), id)
	h.respond(c, http.StatusOK, course, err)
}

// CourseByID hides drafts from everyone but admins.
func (h *Handler) CourseByID(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.CourseByID(c.Request.Context(), id)
	if err == nil && course.Status != models.StatusPublished && !middleware.CurrentUser(c).IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	h.respond(c, http.StatusOK, course, err)
}

// ListCourses shows published courses; admins may pass ?status=.
func (h *Handler) ListCourses(c *gin.Context) {
	limit, offset, ok := middleware.Page(c)
	if !ok {
		return
	}
	f := models.CourseFilter{
		Status:   models.StatusPublished,
		Category: c.Query("category"),
		Level:    c.Query("level"),
		Tag:      c.Query("tag"),
		Query:    c.Query("query"),
		Limit:    limit,
		Offset:   offset,
	}
	if middleware.CurrentUser(c).IsAdmin() {
		f.Status = c.Query("status")
	}
	courses, total, err := h.service.ListCourses(c.Request.Context(), f)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "courses": courses})
}

func (h *Handler) CreateModule(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req lesson.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.AddModule(c.Request.Context(), id, req.Input())
	h.respond(c, http.StatusCreated, course, err)
}

func (h *Handler) UpdateModule(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req lesson.ModulePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateModule(c.Request.Context(), id, c.Param("module_id"), req.Update())
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) DeleteModule(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteModule(c.Request.Context(), id, c.Param("module_id"))
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) CreateChapter(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req lesson.ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.AddChapter(c.Request.Context(), id, c.Param("module_id"), req.Input())
	h.respond(c, http.StatusCreated, course, err)
}

func (h *Handler) UpdateChapter(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req lesson.ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateChapter(c.Request.Context(), id, c.Param("module_id"), c.Param("chapter_id"), req.Input())
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) DeleteChapter(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteChapter(c.Request.Context(), id, c.Param("module_id"), c.Param("chapter_id"))
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) CreateLesson(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	in := req.Input()
	in.VideoURL = req.VideoURL
	course, err := h.service.AddLesson(c.Request.Context(), id, c.Param("module_id"), c.Param("chapter_id"), in)
	h.respond(c, http.StatusCreated, course, err)
}

func (h *Handler) UpdateLesson(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req lesson.LessonPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateLesson(c.Request.Context(), id, c.Param("lesson_id"), req.Update())
	h.respond(c, http.StatusOK, course, err)
}

func (h *Handler) DeleteLesson(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteLesson(c.Request.Context(), id, c.Param("lesson_id"))
	h.respond(c, http.StatusOK, course, err)
}
