package models

import "time"

type UploadKind string

const (
	KindCourseThumbnail UploadKind = "course-thumbnail"
	KindCoursePreview   UploadKind = "course-preview"
	KindLessonVideo     UploadKind = "lesson-video"
	KindLessonResource  UploadKind = "lesson-resource"
	KindPostMedia       UploadKind = "post-media"
	KindAvatar          UploadKind = "avatar"
)

type PresignRequest struct {
	Kind        UploadKind
	Filename    string
	ContentType string
	Size        int64
}

type PresignedUpload struct {
	UploadURL        string            `json:"upload_url"`
	Method           string            `json:"method"`
	ObjectKey        string            `json:"object_key"`
	Headers          map[string]string `json:"headers"`
	ExpiresAt        time.Time         `json:"expires_at"`
	ExpiresInSeconds int64             `json:"expires_in_seconds"`
}

type ObjectInfo struct {
	Key         string    `json:"object_key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
