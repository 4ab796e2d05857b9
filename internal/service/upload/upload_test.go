package upload

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/internal/storage/minio_storage"
	"Learnify/pkg/logger"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mediaStub struct {
	presignTTL time.Duration
	presignCT  string
	removed    []string
	stat       func(ctx context.Context, key string) (*models.ObjectInfo, error)
}

func (m *mediaStub) PresignUpload(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	m.presignTTL, m.presignCT = ttl, contentType
	return "https://minio.test/bucket/" + key + "?X-Amz-Signature=abc", nil
}

func (m *mediaStub) ObjectURL(_ context.Context, key string) (string, error) {
	return "https://minio.test/bucket/" + key, nil
}

func (m *mediaStub) StatObject(ctx context.Context, key string) (*models.ObjectInfo, error) {
	return m.stat(ctx, key)
}

func (m *mediaStub) RemoveObject(_ context.Context, key string) error {
	m.removed = append(m.removed, key)
	return nil
}

var testPolicy = TTLPolicy{Base: 5 * time.Minute, BytesPerSecond: mib, Max: time.Hour}

func newService(media *mediaStub) *UploadService {
	svc := NewUploadService(logger.NewNop(), media, testPolicy)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func learner() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
}

func admin() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: models.AdminRole}
}

func TestTTLPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy TTLPolicy
		size   int64
		want   time.Duration
	}{
		{"base only for tiny file", testPolicy, 1, 5*time.Minute + time.Second},
		{"scales with size", testPolicy, 120 * mib, 7 * time.Minute},
		{"clamped to max", testPolicy, 5 * gib, time.Hour},
		{"clamped to store ceiling", TTLPolicy{Base: 30 * 24 * time.Hour}, 1, minio_storage.MaxPresignTTL},
		{"zero rate ignores size", TTLPolicy{Base: time.Minute}, gib, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.TTL(tt.size))
		})
	}
}

func TestPresign(t *testing.T) {
	media := &mediaStub{}
	svc := newService(media)
	owner := learner()

	up, err := svc.Presign(context.Background(), owner, models.PresignRequest{
		Kind:     models.KindPostMedia,
		Filename: "Holiday.JPG",
		Size:     2 * mib,
	})
	require.NoError(t, err)

	assert.Equal(t, "PUT", up.Method)
	assert.True(t, strings.HasPrefix(up.ObjectKey, "post-media/"+owner.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(up.ObjectKey, ".jpg"))
	assert.Equal(t, "image/jpeg", up.Headers["Content-Type"])
	assert.Equal(t, int64(302), up.ExpiresInSeconds)
	assert.Equal(t, 302*time.Second, media.presignTTL)
	assert.Equal(t, "image/jpeg", media.presignCT)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 5, 2, 0, time.UTC), up.ExpiresAt)
	assert.Contains(t, up.UploadURL, up.ObjectKey)
}

func TestPresign_Rejections(t *testing.T) {
	svc := newService(&mediaStub{})

	tests := []struct {
		name string
		user *models.User
		req  models.PresignRequest
		want error
	}{
		{"unknown kind", learner(), models.PresignRequest{Kind: "banner", ContentType: "image/png", Size: 1}, app_errors.ErrValidation},
		{"course kinds need admin", learner(), models.PresignRequest{Kind: models.KindLessonVideo, ContentType: "video/mp4", Size: 1}, app_errors.ErrForbidden},
		{"empty file", learner(), models.PresignRequest{Kind: models.KindAvatar, ContentType: "image/png"}, app_errors.ErrValidation},
		{"avatar too large", learner(), models.PresignRequest{Kind: models.KindAvatar, ContentType: "image/png", Size: 6 * mib}, app_errors.ErrFileSize},
		{"avatar must be an image", learner(), models.PresignRequest{Kind: models.KindAvatar, ContentType: "video/mp4", Size: 1}, app_errors.ErrUnsupportedMedia},
		{"thumbnail must be an image", admin(), models.PresignRequest{Kind: models.KindCourseThumbnail, Filename: "a.exe", Size: 1}, app_errors.ErrUnsupportedMedia},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Presign(context.Background(), tt.user, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPresign_AdminResourceWithParams(t *testing.T) {
	svc := newService(&mediaStub{})

	up, err := svc.Presign(context.Background(), admin(), models.PresignRequest{
		Kind:        models.KindLessonResource,
		Filename:    "notes",
		ContentType: "application/pdf; charset=binary",
		Size:        mib,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", up.Headers["Content-Type"])
	assert.True(t, strings.HasSuffix(up.ObjectKey, ".pdf"))
}

func TestConfirmAndDelete_Ownership(t *testing.T) {
	media := &mediaStub{stat: func(_ context.Context, key string) (*models.ObjectInfo, error) {
		return &models.ObjectInfo{Key: key, Size: 42, ContentType: "image/png"}, nil
	}}
	svc := newService(media)
	owner, stranger := learner(), learner()
	key := "avatar/" + owner.ID.Hex() + "/x.png"

	info, err := svc.Confirm(context.Background(), owner, key)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.Size)

	_, err = svc.Confirm(context.Background(), stranger, key)
	assert.ErrorIs(t, err, app_errors.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(context.Background(), stranger, key), app_errors.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), admin(), key))
	assert.Equal(t, []string{key}, media.removed)
}

func TestConfirm_RejectsObjectOutsidePolicy(t *testing.T) {
	owner := learner()
	key := "avatar/" + owner.ID.Hex() + "/me.png"

	tests := []struct {
		name string
		info models.ObjectInfo
		want error
	}{
		{"oversized and wrong type", models.ObjectInfo{Size: 3 * gib, ContentType: "application/x-msdownload"}, app_errors.ErrFileSize},
		{"wrong type", models.ObjectInfo{Size: 1024, ContentType: "application/x-msdownload"}, app_errors.ErrUnsupportedMedia},
		{"type with params", models.ObjectInfo{Size: 1024, ContentType: "text/html; charset=utf-8"}, app_errors.ErrUnsupportedMedia},
		{"just over the limit", models.ObjectInfo{Size: 5*mib + 1, ContentType: "image/png"}, app_errors.ErrFileSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &mediaStub{stat: func(_ context.Context, k string) (*models.ObjectInfo, error) {
				info := tt.info
				info.Key = k
				return &info, nil
			}}
			svc := newService(media)

			_, err := svc.Presign(context.Background(), owner, models.PresignRequest{Kind: models.KindAvatar, Filename: "me.png", ContentType: "image/png", Size: 1024})
			require.NoError(t, err)
			assert.Equal(t, "image/png", media.presignCT)

			info, err := svc.Confirm(context.Background(), owner, key)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, info)
			assert.Equal(t, []string{key}, media.removed)
		})
	}

	media := &mediaStub{stat: func(_ context.Context, k string) (*models.ObjectInfo, error) {
		return &models.ObjectInfo{Key: k, Size: 5 * mib, ContentType: "image/png; q=1"}, nil
	}}
	info, err := newService(media).Confirm(context.Background(), owner, key)
	require.NoError(t, err)
	assert.Equal(t, int64(5*mib), info.Size)
	assert.Empty(t, media.removed)
}

func TestParseKey(t *testing.T) {
	kind, owner, err := ParseKey("post-media/abc/f.mp4")
	require.NoError(t, err)
	assert.Equal(t, models.KindPostMedia, kind)
	assert.Equal(t, "abc", owner)

	for _, bad := range []string{"", "post-media/abc", "other/abc/f", "post-media//f", "post-media/abc/../f"} {
		_, _, err := ParseKey(bad)
		assert.ErrorIs(t, err, app_errors.ErrValidation, bad)
	}
}
