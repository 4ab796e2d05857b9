package app_errors

import (
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUnauthorized = errors.New("unauthorized")
var ErrForbidden = errors.New("insufficient permissions")
var ErrTokenExpired = errors.New("token expired")
var ErrInvalidSignature = errors.New("invalid signature")
var ErrValidation = errors.New("validation failed")
var ErrConflict = errors.New("document was modified concurrently, retry")
var ErrSlugTaken = errors.New("slug is already taken")

var ErrCourseNotFound = errors.New("course not found")
var ErrModuleNotFound = errors.New("module not found")
var ErrChapterNotFound = errors.New("chapter not found")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrResourceNotFound = errors.New("resource not found")
var ErrCourseNotPublished = errors.New("course not published")
var ErrAlreadyEnrolled = errors.New("user is already enrolled in course")
var ErrNotEnrolled = errors.New("user is not enrolled in course")
var ErrInvalidVideoURL = errors.New("invalid youtube video url")

var ErrUnsupportedMedia = errors.New("unsupported media type")
var ErrFileSize = errors.New("file size error")
var ErrObjectNotFound = errors.New("object not found")

var ErrPostNotFound = errors.New("post not found")
var ErrCommentNotFound = errors.New("comment not found")
var ErrSelfFollow = errors.New("you cannot follow yourself")

// Invalid wraps ErrValidation with a message that is safe to show to clients.
func Invalid(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }
