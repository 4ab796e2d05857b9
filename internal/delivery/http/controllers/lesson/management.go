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

// CurriculumService edits the module, chapter and lesson tree of a course.
// Every call returns the whole course with recomputed aggregates.
type CurriculumService interface {
	AddModule(ctx context.Context, courseID primitive.ObjectID, in models.ModuleInput) (*models.Course, error)
	UpdateModule(ctx context.Context, courseID primitive.ObjectID, moduleID string, upd models.ModuleUpdate) (*models.Course, error)
	DeleteModule(ctx context.Context, courseID primitive.ObjectID, moduleID string) (*models.Course, error)
	MoveModule(ctx context.Context, courseID primitive.ObjectID, moduleID string, to int) (*models.Course, error)
	AddChapter(ctx context.Context, courseID primitive.ObjectID, moduleID string, in models.ChapterInput) (*models.Course, error)
	UpdateChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.ChapterInput) (*models.Course, error)
	DeleteChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string) (*models.Course, error)
	MoveChapter(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, to int) (*models.Course, error)
	AddLesson(ctx context.Context, courseID primitive.ObjectID, moduleID, chapterID string, in models.LessonInput) (*models.Course, error)
	UpdateLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string, upd models.LessonUpdate) (*models.Course, error)
	DeleteLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string) (*models.Course, error)
	MoveLesson(ctx context.Context, courseID primitive.ObjectID, lessonID string, mv models.LessonMove) (*models.Course, error)
}

type ManagementHandler struct {
	log     logger.Log
	service CurriculumService
}

func NewManagementHandler(log logger.Log, service CurriculumService) *ManagementHandler {
	return &ManagementHandler{log: log, service: service}
}

type ModuleRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Position    *int   `json:"position" binding:"omitempty,min=0"`
}

func (r ModuleRequest) Input() models.ModuleInput {
	return models.ModuleInput{Title: r.Title, Description: r.Description, Position: r.Position}
}

// ModulePatchRequest edits only the fields present in the body.
type ModulePatchRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Position    *int    `json:"position" binding:"omitempty,min=0"`
}

func (r ModulePatchRequest) Update() models.ModuleUpdate {
	return models.ModuleUpdate{Title: r.Title, Description: r.Description, Position: r.Position}
}

type ChapterRequest struct {
	Title    string `json:"title" binding:"required,notblank,max=200"`
	Position *int   `json:"position" binding:"omitempty,min=0"`
}

func (r ChapterRequest) Input() models.ChapterInput {
	return models.ChapterInput{Title: r.Title, Position: r.Position}
}

type LessonRequest struct {
	Title           string `json:"title" binding:"required,notblank,max=200"`
	Description     string `json:"description" binding:"max=5000"`
	Type            string `json:"type" binding:"omitempty,oneof=video article quiz"`
	Content         string `json:"content"`
	VideoKey        string `json:"video_key"`
	VideoURL        string `json:"video_url"`
	DurationMinutes int    `json:"duration_minutes" binding:"gte=0"`
	IsFreePreview   bool   `json:"is_free_preview"`
	Position        *int   `json:"position" binding:"omitempty,min=0"`
}

func (r LessonRequest) Input() models.LessonInput {
	return models.LessonInput{
		Title:           r.Title,
		Description:     r.Description,
		Type:            r.Type,
		Content:         r.Content,
		VideoKey:        r.VideoKey,
		VideoURL:        r.VideoURL,
		DurationMinutes: r.DurationMinutes,
		IsFreePreview:   r.IsFreePreview,
		Position:        r.Position,
	}
}

// LessonPatchRequest edits only the fields present in the body, so media
// keys survive a title change.
type LessonPatchRequest struct {
	Title           *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description     *string `json:"description" binding:"omitempty,max=5000"`
	Type            *string `json:"type" binding:"omitempty,oneof=video article quiz"`
	Content         *string `json:"content"`
	VideoKey        *string `json:"video_key"`
	VideoURL        *string `json:"video_url"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,gte=0"`
	IsFreePreview   *bool   `json:"is_free_preview"`
	Position        *int    `json:"position" binding:"omitempty,min=0"`
}

func (r LessonPatchRequest) Update() models.LessonUpdate {
	return models.LessonUpdate{
		Title:           r.Title,
		Description:     r.Description,
		Type:            r.Type,
		Content:         r.Content,
		VideoKey:        r.VideoKey,
		VideoURL:        r.VideoURL,
		DurationMinutes: r.DurationMinutes,
		IsFreePreview:   r.IsFreePreview,
		Position:        r.Position,
	}
}

type moveRequest struct {
	Index     *int   `json:"index" binding:"required,min=0"`
	ModuleID  string `json:"module_id"`
	ChapterID string `json:"chapter_id"`
}

// respond answers with the updated course or the mapped error.
func (h *ManagementHandler) respond(c *gin.Context, status int, course *models.Course, err error) {
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(status, course)
}

func (h *ManagementHandler) CreateModule(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.AddModule(c.Request.Context(), courseID, req.Input())
	h.respond(c, http.StatusCreated, course, err)
}

func (h *ManagementHandler) UpdateModule(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req ModulePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateModule(c.Request.Context(), courseID, c.Param("module_id"), req.Update())
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) DeleteModule(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteModule(c.Request.Context(), courseID, c.Param("module_id"))
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) MoveModule(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.MoveModule(c.Request.Context(), courseID, c.Param("module_id"), *req.Index)
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) CreateChapter(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.AddChapter(c.Request.Context(), courseID, c.Param("module_id"), req.Input())
	h.respond(c, http.StatusCreated, course, err)
}

func (h *ManagementHandler) UpdateChapter(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateChapter(c.Request.Context(), courseID, c.Param("module_id"), c.Param("chapter_id"), req.Input())
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) DeleteChapter(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteChapter(c.Request.Context(), courseID, c.Param("module_id"), c.Param("chapter_id"))
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) MoveChapter(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.MoveChapter(c.Request.Context(), courseID, c.Param("module_id"), c.Param("chapter_id"), *req.Index)
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) CreateLesson(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.AddLesson(c.Request.Context(), courseID, c.Param("module_id"), c.Param("chapter_id"), req.Input())
	h.respond(c, http.StatusCreated, course, err)
}

func (h *ManagementHandler) UpdateLesson(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req LessonPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.UpdateLesson(c.Request.Context(), courseID, c.Param("lesson_id"), req.Update())
	h.respond(c, http.StatusOK, course, err)
}

func (h *ManagementHandler) DeleteLesson(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.DeleteLesson(c.Request.Context(), courseID, c.Param("lesson_id"))
	h.respond(c, http.StatusOK, course, err)
}

// MoveLesson reorders a lesson, optionally into another chapter.
func (h *ManagementHandler) MoveLesson(c *gin.Context) {
	courseID, ok := middleware.ObjectIDParam(c, "course_id")
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	course, err := h.service.MoveLesson(c.Request.Context(), courseID, c.Param("lesson_id"), models.LessonMove{
		ModuleID:  req.ModuleID,
		ChapterID: req.ChapterID,
		Index:     *req.Index,
	})
	h.respond(c, http.StatusOK, course, err)
}
