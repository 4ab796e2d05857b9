package minio_storage

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// MaxPresignTTL is the longest expiry S3 compatible stores accept.
const MaxPresignTTL = 7 * 24 * time.Hour

type MediaStorage struct {
	storage     *MinioStorage
	downloadTTL time.Duration
	publicBase  string
}

// NewMediaStorage serves reads through presigned GET URLs, or through
// publicBase when the bucket sits behind a public CDN.
func NewMediaStorage(storage *MinioStorage, downloadTTL time.Duration, publicBase string) *MediaStorage {
	return &MediaStorage{storage: storage, downloadTTL: downloadTTL, publicBase: strings.TrimRight(publicBase, "/")}
}

// PresignUpload returns a URL the client PUTs the object body to directly.
// The signature covers Content-Type, so the PUT must send contentType.
func (s *MediaStorage) PresignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (string, error) {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	u, err := s.storage.client.PresignHeader(ctx, http.MethodPut, s.storage.bucket, objectKey, ttl, nil, headers)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MediaStorage) ObjectURL(ctx context.Context, objectKey string) (string, error) {
	if s.publicBase != "" {
		return publicURL(s.publicBase, objectKey), nil
	}
	reqParams := make(url.Values)
	u, err := s.storage.client.PresignedGetObject(ctx, s.storage.bucket, objectKey, s.downloadTTL, reqParams)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MediaStorage) StatObject(ctx context.Context, objectKey string) (*models.ObjectInfo, error) {
	info, err := s.storage.client.StatObject(ctx, s.storage.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, app_errors.ErrObjectNotFound
		}
		return nil, err
	}
	return &models.ObjectInfo{
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
		UploadedAt:  info.LastModified,
	}, nil
}

func (s *MediaStorage) RemoveObject(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.storage.bucket, objectKey, minio.RemoveObjectOptions{})
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}

func publicURL(base, objectKey string) string {
	parts := strings.Split(objectKey, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return base + "/" + strings.Join(parts, "/")
}
