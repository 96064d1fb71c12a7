package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/shakib522/Sound-Extractor/internal/domain"
)

// S3Mirror копия готовых дорожек в S3/MinIO.
// Ключ объекта: <task_id>/<имя файла>.
type S3Mirror struct {
	client        *minio.Client
	bucket        string
	presignExpiry time.Duration
}

// NewS3Mirror создаёт новый экземпляр S3Mirror
func NewS3Mirror(ctx context.Context, cfg config.S3Config) (*S3Mirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Проверяем/создаём bucket
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &S3Mirror{
		client:        client,
		bucket:        cfg.Bucket,
		presignExpiry: cfg.PresignExpiry,
	}, nil
}

// ObjectKey ключ артефакта задачи в bucket
func ObjectKey(taskID uuid.UUID, fileName string) string {
	return path.Join(taskID.String(), fileName)
}

// Upload загружает артефакты задачи
func (s *S3Mirror) Upload(ctx context.Context, taskID uuid.UUID, artifacts []string) error {
	for _, artifact := range artifacts {
		fileName := filepath.Base(artifact)
		_, err := s.client.FPutObject(ctx, s.bucket, ObjectKey(taskID, fileName), artifact, minio.PutObjectOptions{
			ContentType: domain.ContentTypeFromFileName(fileName),
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", fileName, err)
		}
	}
	return nil
}

// URL возвращает presigned URL для скачивания артефакта
func (s *S3Mirror) URL(ctx context.Context, taskID uuid.UUID, fileName string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, ObjectKey(taskID, fileName), s.presignExpiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return u.String(), nil
}

// Remove удаляет все объекты задачи
func (s *S3Mirror) Remove(ctx context.Context, taskID uuid.UUID) error {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    taskID.String() + "/",
		Recursive: true,
	})

	var listErr error
	toRemove := make(chan minio.ObjectInfo)
	go func() {
		defer close(toRemove)
		for obj := range objects {
			if obj.Err != nil {
				listErr = obj.Err
				continue
			}
			select {
			case toRemove <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	var removeErr error
	for rErr := range s.client.RemoveObjects(ctx, s.bucket, toRemove, minio.RemoveObjectsOptions{}) {
		if removeErr == nil {
			removeErr = fmt.Errorf("failed to delete object %s: %w", rErr.ObjectName, rErr.Err)
		}
	}

	if removeErr != nil {
		return removeErr
	}
	if listErr != nil {
		return fmt.Errorf("failed to list objects: %w", listErr)
	}
	return nil
}
