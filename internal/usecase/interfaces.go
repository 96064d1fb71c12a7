package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/domain"
)

// TaskRepository реестр задач
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	// Update применяет mutate к записи атомарно
	Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Task) error) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.TaskFilter, pagination domain.Pagination) (*domain.TaskListResult, error)
	Execution(ctx context.Context, id uuid.UUID) (*domain.Execution, error)
}

// FileStorage локальное хранилище загрузок и результатов
type FileStorage interface {
	SaveUpload(ctx context.Context, fileName string, reader io.Reader) (path string, err error)
	DeleteUpload(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	CreateTaskDir(ctx context.Context, taskID uuid.UUID) (string, error)
	RemoveTaskDir(ctx context.Context, taskID uuid.UUID) error
}

// ArtifactMirror внешняя копия готовых артефактов (S3)
type ArtifactMirror interface {
	Upload(ctx context.Context, taskID uuid.UUID, artifacts []string) error
	URL(ctx context.Context, taskID uuid.UUID, fileName string) (string, error)
	Remove(ctx context.Context, taskID uuid.UUID) error
}

// Separator разделение с выбором бэкенда
type Separator interface {
	Separate(ctx context.Context, inputPath, outputDir string, separationType domain.SeparationType) (*domain.SeparationResult, error)
}

// PostProcessor приведение артефактов к запрошенному качеству
type PostProcessor interface {
	Process(ctx context.Context, artifacts []string, quality domain.Quality) ([]string, error)
}

// TaskQueue интерфейс для запуска фонового исполнения
type TaskQueue interface {
	Enqueue(ctx context.Context, taskID uuid.UUID) error
}
