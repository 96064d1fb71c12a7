// Package storage содержит локальное файловое хранилище и зеркало артефактов в S3
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/config"
)

// LocalStorage каталоги загрузок и результатов на локальном диске.
// Результаты задачи лежат в <output_dir>/<task_id>.
type LocalStorage struct {
	uploadDir string
	outputDir string
}

// NewLocalStorage создаёт каталоги, если их нет
func NewLocalStorage(cfg config.StorageConfig) (*LocalStorage, error) {
	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &LocalStorage{
		uploadDir: cfg.UploadDir,
		outputDir: cfg.OutputDir,
	}, nil
}

// SaveUpload сохраняет загруженный файл под уникальным именем и возвращает путь
func (s *LocalStorage) SaveUpload(_ context.Context, fileName string, reader io.Reader) (path string, err error) {
	dst := filepath.Join(s.uploadDir, uuid.New().String()+"_"+filepath.Base(fileName))

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close upload file: %w", cerr)
			path = ""
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return dst, nil
}

// DeleteUpload удаляет загруженный файл; отсутствие файла не ошибка
func (s *LocalStorage) DeleteUpload(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// Exists проверяет, что путь указывает на обычный файл
func (s *LocalStorage) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// TaskDir каталог результатов задачи
func (s *LocalStorage) TaskDir(taskID uuid.UUID) string {
	return filepath.Join(s.outputDir, taskID.String())
}

// CreateTaskDir создаёт каталог результатов задачи
func (s *LocalStorage) CreateTaskDir(_ context.Context, taskID uuid.UUID) (string, error) {
	dir := s.TaskDir(taskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create task directory: %w", err)
	}
	return dir, nil
}

// RemoveTaskDir рекурсивно удаляет каталог результатов задачи
func (s *LocalStorage) RemoveTaskDir(_ context.Context, taskID uuid.UUID) error {
	if err := os.RemoveAll(s.TaskDir(taskID)); err != nil {
		return fmt.Errorf("failed to remove task directory: %w", err)
	}
	return nil
}
