package middleware

import (
	"Learnify/internal/app_errors"
	"Learnify/pkg/logger"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{app_errors.ErrValidation, http.StatusBadRequest},
	{app_errors.ErrInvalidVideoURL, http.StatusBadRequest},
	{app_errors.ErrSelfFollow, http.StatusBadRequest},
	{app_errors.ErrUnauthorized, http.StatusUnauthorized},
	{app_errors.ErrTokenExpired, http.StatusUnauthorized},
	{app_errors.ErrInvalidSignature, http.StatusUnauthorized},
	{app_errors.ErrForbidden, http.StatusForbidden},
	{app_errors.ErrNotEnrolled, http.StatusForbidden},
	{app_errors.ErrUserNotFound, http.StatusNotFound},
	{app_errors.ErrCourseNotFound, http.StatusNotFound},
	{app_errors.ErrModuleNotFound, http.StatusNotFound},
	{app_errors.ErrChapterNotFound, http.StatusNotFound},
	{app_errors.ErrLessonNotFound, http.StatusNotFound},
	{app_errors.ErrResourceNotFound, http.StatusNotFound},
	{app_errors.ErrPostNotFound, http.StatusNotFound},
	{app_errors.ErrCommentNotFound, http.StatusNotFound},
	{app_errors.ErrObjectNotFound, http.StatusNotFound},
	{app_errors.ErrConflict, http.StatusConflict},
	{app_errors.ErrSlugTaken, http.StatusConflict},
	{app_errors.ErrAlreadyEnrolled, http.StatusConflict},
	{app_errors.ErrCourseNotPublished, http.StatusConflict},
	{app_errors.ErrFileSize, http.StatusRequestEntityTooLarge},
	{app_errors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	for _, e := range statusByErr {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Fail writes err as {"error": msg}. Unknown errors are logged and hidden.
func Fail(c *gin.Context, log logger.Log, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.ErrorErr("request failed", err, "path", c.FullPath())
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// BadRequest answers a binding failure.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
}

// ObjectIDParam parses the path parameter name. On failure it has already
// answered 400.
func ObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}

// Page reads limit and offset query parameters. Zero limit lets the service
// pick its default.
func Page(c *gin.Context) (limit, offset int, ok bool) {
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return 0, 0, false
		}
		limit = v
	}
	if s := c.Query("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return 0, 0, false
		}
		offset = v
	}
	return limit, offset, true
}
