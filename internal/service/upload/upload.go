package upload

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/internal/storage/minio_storage"
	"Learnify/pkg/logger"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	kib = int64(1) << 10
	mib = kib << 10
	gib = mib << 10
)

type mediaRepo interface {
	PresignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (string, error)
	ObjectURL(ctx context.Context, objectKey string) (string, error)
	StatObject(ctx context.Context, objectKey string) (*models.ObjectInfo, error)
	RemoveObject(ctx context.Context, objectKey string) error
}

type kindPolicy struct {
	maxSize   int64
	adminOnly bool
	accepts   func(contentType string) bool
}

var policies = map[models.UploadKind]kindPolicy{
	models.KindCourseThumbnail: {maxSize: 10 * mib, adminOnly: true, accepts: isImage},
	models.KindCoursePreview:   {maxSize: 2 * gib, adminOnly: true, accepts: isVideo},
	models.KindLessonVideo:     {maxSize: 5 * gib, adminOnly: true, accepts: isVideo},
	models.KindLessonResource:  {maxSize: 200 * mib, adminOnly: true, accepts: isDocument},
	models.KindPostMedia:       {maxSize: 500 * mib, accepts: func(ct string) bool { return isImage(ct) || isVideo(ct) }},
	models.KindAvatar:          {maxSize: 5 * mib, accepts: isImage},
}

// TTLPolicy sizes upload URL expiry: Base plus the time to push the object at
// BytesPerSecond, capped by Max.
type TTLPolicy struct {
	Base           time.Duration
	BytesPerSecond int64
	Max            time.Duration
}

// TTL returns the upload URL lifetime for an object of size bytes.
func (p TTLPolicy) TTL(size int64) time.Duration {
	ttl := p.Base
	if p.BytesPerSecond > 0 && size > 0 {
		seconds := (size + p.BytesPerSecond - 1) / p.BytesPerSecond
		ttl += time.Duration(seconds) * time.Second
	}
	if p.Max > 0 && ttl > p.Max {
		ttl = p.Max
	}
	if ttl > minio_storage.MaxPresignTTL {
		ttl = minio_storage.MaxPresignTTL
	}
	return ttl
}

type UploadService struct {
	log       logger.Log
	mediaRepo mediaRepo
	policy    TTLPolicy
	now       func() time.Time
}

func NewUploadService(log logger.Log, mediaRepo mediaRepo, policy TTLPolicy) *UploadService {
	return &UploadService{log: log, mediaRepo: mediaRepo, policy: policy, now: time.Now}
}

// Presign issues a PUT URL for a new object owned by owner.
func (s *UploadService) Presign(ctx context.Context, owner *models.User, req models.PresignRequest) (*models.PresignedUpload, error) {
	pol, ok := policies[req.Kind]
	if !ok {
		return nil, app_errors.Invalid("unknown upload kind %q", req.Kind)
	}
	if pol.adminOnly && !owner.IsAdmin() {
		return nil, app_errors.ErrForbidden
	}
	if req.Size <= 0 {
		return nil, app_errors.Invalid("size must be positive")
	}
	if req.Size > pol.maxSize {
		return nil, fmt.Errorf("%w: %s uploads are limited to %d bytes", app_errors.ErrFileSize, req.Kind, pol.maxSize)
	}

	contentType := normalizeContentType(req.ContentType, req.Filename)
	if !pol.accepts(contentType) {
		return nil, fmt.Errorf("%w: %q is not accepted for %s", app_errors.ErrUnsupportedMedia, contentType, req.Kind)
	}

	key := fmt.Sprintf("%s/%s/%s%s", req.Kind, owner.ID.Hex(), uuid.NewString(), extension(req.Filename, contentType))
	ttl := s.policy.TTL(req.Size)
	u, err := s.mediaRepo.PresignUpload(ctx, key, contentType, ttl)
	if err != nil {
		s.log.ErrorErr("failed to presign upload", err, "object_key", key)
		return nil, err
	}

	return &models.PresignedUpload{
		UploadURL:        u,
		Method:           http.MethodPut,
		ObjectKey:        key,
		Headers:          map[string]string{"Content-Type": contentType},
		ExpiresAt:        s.now().UTC().Add(ttl),
		ExpiresInSeconds: int64(ttl / time.Second),
	}, nil
}

// Confirm checks that the client finished uploading key and that the stored
// object still fits the policy of its kind. An object that does not is
// removed.
func (s *UploadService) Confirm(ctx context.Context, owner *models.User, key string) (*models.ObjectInfo, error) {
	if err := authorize(owner, key); err != nil {
		return nil, err
	}
	info, err := s.mediaRepo.StatObject(ctx, key)
	if err != nil {
		return nil, err
	}

	kind, _, _ := ParseKey(key)
	pol := policies[kind]
	contentType := normalizeContentType(info.ContentType, key)
	var violation error
	switch {
	case info.Size > pol.maxSize:
		violation = fmt.Errorf("%w: %s uploads are limited to %d bytes", app_errors.ErrFileSize, kind, pol.maxSize)
	case !pol.accepts(contentType):
		violation = fmt.Errorf("%w: %q is not accepted for %s", app_errors.ErrUnsupportedMedia, contentType, kind)
	}
	if violation == nil {
		return info, nil
	}

	s.log.Warn("uploaded object rejected", "object_key", key, "size", info.Size, "content_type", info.ContentType)
	if err := s.mediaRepo.RemoveObject(ctx, key); err != nil {
		s.log.ErrorErr("failed to remove rejected object", err, "object_key", key)
	}
	return nil, violation
}

func (s *UploadService) URL(ctx context.Context, key string) (string, error) {
	if _, _, err := ParseKey(key); err != nil {
		return "", err
	}
	return s.mediaRepo.ObjectURL(ctx, key)
}

func (s *UploadService) Delete(ctx context.Context, owner *models.User, key string) error {
	if err := authorize(owner, key); err != nil {
		return err
	}
	if err := s.mediaRepo.RemoveObject(ctx, key); err != nil {
		return err
	}
	s.log.Info("object removed", "object_key", key, "user_id", owner.ID.Hex())
	return nil
}

// ParseKey splits an object key issued by Presign into its kind and owner.
func ParseKey(key string) (models.UploadKind, string, error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" || strings.Contains(parts[2], "/") {
		return "", "", app_errors.Invalid("malformed object key")
	}
	kind := models.UploadKind(parts[0])
	if _, ok := policies[kind]; !ok {
		return "", "", app_errors.Invalid("malformed object key")
	}
	return kind, parts[1], nil
}

func authorize(u *models.User, key string) error {
	_, owner, err := ParseKey(key)
	if err != nil {
		return err
	}
	if owner != u.ID.Hex() && !u.IsAdmin() {
		return app_errors.ErrForbidden
	}
	return nil
}

func normalizeContentType(contentType, filename string) string {
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func extension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && len(ext) <= 10 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func isImage(ct string) bool { return strings.HasPrefix(ct, "image/") }

func isVideo(ct string) bool { return strings.HasPrefix(ct, "video/") }

func isDocument(ct string) bool {
	switch {
	case isImage(ct), strings.HasPrefix(ct, "text/"):
		return true
	case ct == "application/pdf", ct == "application/zip", ct == "application/x-zip-compressed":
		return true
	case ct == "application/msword",
		strings.HasPrefix(ct, "application/vnd.ms-"),
		strings.HasPrefix(ct, "application/vnd.openxmlformats-officedocument."):
		return true
	}
	return false
}
