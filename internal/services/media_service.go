package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the storage backend for uploaded media.
type ObjectStore interface {
	Upload(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error
	PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, bucketName, objectName string) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioStore struct {
	client *minio.Client
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client}, nil
}

func (m *minioStore) Upload(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioStore) PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioStore) Delete(ctx context.Context, bucketName, objectName string) error {
	return m.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
}

func (m *minioStore) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

// MediaService stores avatar, cover, and identity-document uploads and builds
// the attachment descriptors served back to clients.
type MediaService interface {
	UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) (*models.Attachment, error)
	UploadCover(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) (*models.Attachment, error)
	UploadDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, filename string, reader io.Reader, size int64) (*models.Attachment, error)
	DocumentURL(ctx context.Context, doc *models.Attachment, expiry time.Duration) (string, error)
}

type mediaService struct {
	store      ObjectStore
	normalizer *URLNormalizer
	bucket     string
	now        func() time.Time
}

func NewMediaService(store ObjectStore, normalizer *URLNormalizer, bucket string) MediaService {
	return &mediaService{
		store:      store,
		normalizer: normalizer,
		bucket:     bucket,
		now:        time.Now,
	}
}

func (s *mediaService) UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	objectName := fmt.Sprintf("avatars/%s/%d-%s", userID.String(), s.now().UnixNano(), sanitizeFilename(filename))
	return s.upload(ctx, objectName, filename, reader, size)
}

func (s *mediaService) UploadCover(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	objectName := fmt.Sprintf("covers/%s/%d-%s", userID.String(), s.now().UnixNano(), sanitizeFilename(filename))
	return s.upload(ctx, objectName, filename, reader, size)
}

func (s *mediaService) UploadDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	objectName := fmt.Sprintf("documents/%s/%s-%d-%s", userID.String(), field, s.now().UnixNano(), sanitizeFilename(filename))
	return s.upload(ctx, objectName, filename, reader, size)
}

func (s *mediaService) upload(ctx context.Context, objectName, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	if err := s.store.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, fmt.Errorf("bucket check failed: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.store.Upload(ctx, s.bucket, objectName, contentType, reader, size); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	uploadedAt := s.now()
	relative := "/static/" + objectName
	return &models.Attachment{
		URL:        relative,
		FullURL:    s.normalizer.CacheBust(s.normalizer.Normalize(relative), uploadedAt),
		Filename:   filepath.Base(filename),
		Mimetype:   contentType,
		UploadedAt: uploadedAt,
	}, nil
}

// DocumentURL hands out a short-lived presigned link for reviewing an
// uploaded identity document.
func (s *mediaService) DocumentURL(ctx context.Context, doc *models.Attachment, expiry time.Duration) (string, error) {
	if doc.IsZero() {
		return "", fmt.Errorf("document has no stored object")
	}
	objectName := strings.TrimPrefix(doc.URL, "/static/")
	return s.store.PresignedURL(ctx, s.bucket, objectName, expiry)
}

func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, " ", "-")
	if base == "" || base == "." {
		base = "upload"
	}
	return base
}
