package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
)

// TaskUseCase бизнес-логика работы с задачами
type TaskUseCase struct {
	taskRepo      TaskRepository
	fileStorage   FileStorage
	taskQueue     TaskQueue
	mirror        ArtifactMirror
	validator     *validator.Validate
	maxUploadSize int64
	logger        *zap.Logger
}

// NewTaskUseCase создаёт новый экземпляр TaskUseCase; mirror может быть nil
func NewTaskUseCase(
	taskRepo TaskRepository,
	fileStorage FileStorage,
	taskQueue TaskQueue,
	mirror ArtifactMirror,
	maxUploadSize int64,
	logger *zap.Logger,
) *TaskUseCase {
	return &TaskUseCase{
		taskRepo:      taskRepo,
		fileStorage:   fileStorage,
		taskQueue:     taskQueue,
		mirror:        mirror,
		validator:     validator.New(),
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Create создаёт задачу и ставит её на исполнение.
// Ошибка планирования не возвращается клиенту: задача сразу переводится в failed.
func (uc *TaskUseCase) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	if input.SeparationType == "" {
		input.SeparationType = domain.SeparationVocalsAccompaniment.String()
	}
	if input.Quality == "" {
		input.Quality = domain.QualityHigh.String()
	}

	if err := uc.validateInput(input); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	separationType, err := domain.ParseSeparationType(input.SeparationType)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	quality, err := domain.ParseQuality(input.Quality)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	inputPath := input.InputPath
	ownsInput := false

	if input.FileReader != nil {
		if err := domain.ValidateAudioFileName(input.FileName); err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if err := domain.ValidateFileSize(input.FileSize, uc.maxUploadSize); err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}

		path, err := uc.fileStorage.SaveUpload(ctx, input.FileName, input.FileReader)
		if err != nil {
			uc.logger.Error("Failed to save upload",
				zap.String("file_name", input.FileName),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to save upload: %w", err)
		}
		inputPath = path
		ownsInput = true
	}

	task, err := domain.NewTask(inputPath, separationType, quality)
	if err != nil {
		uc.discardUpload(ctx, inputPath, ownsInput)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.OwnsInput = ownsInput

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		uc.discardUpload(ctx, inputPath, ownsInput)
		uc.logger.Error("Failed to save task",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	if err := uc.taskQueue.Enqueue(ctx, task.ID); err != nil {
		uc.logger.Error("Failed to enqueue task",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		failure := domain.Failuref(domain.FailureInternal, "failed to schedule task: %w", err)
		if err := uc.taskRepo.Update(ctx, task.ID, func(t *domain.Task) error { return t.MarkFailed(failure) }); err != nil {
			uc.logger.Error("Failed to mark unscheduled task as failed",
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
		}
		// клиент должен увидеть failed, а не копию до обновления
		if fresh, err := uc.taskRepo.GetByID(ctx, task.ID); err == nil {
			task = fresh
		}
	}

	uc.logger.Info("Task created successfully",
		zap.String("task_id", task.ID.String()),
		zap.String("input", inputPath),
		zap.String("separation_type", task.SeparationType.String()),
		zap.String("quality", task.Quality.String()),
	)

	return task, nil
}

// GetByID возвращает задачу по ID
func (uc *TaskUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := uc.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// List возвращает список задач
func (uc *TaskUseCase) List(ctx context.Context, filter domain.TaskFilter, pagination domain.Pagination) (*domain.TaskListResult, error) {
	return uc.taskRepo.List(ctx, filter, pagination)
}

// ResolveArtifact находит готовый файл задачи по имени
func (uc *TaskUseCase) ResolveArtifact(ctx context.Context, id uuid.UUID, fileName string) (*Artifact, error) {
	task, err := uc.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Status != domain.TaskStatusCompleted {
		return nil, domain.ErrTaskNotCompleted
	}

	for _, output := range task.Outputs {
		if filepath.Base(output) != fileName {
			continue
		}

		artifact := &Artifact{
			FileName:    fileName,
			Path:        output,
			ContentType: domain.ContentTypeFromFileName(fileName),
		}

		if uc.mirror != nil {
			url, err := uc.mirror.URL(ctx, id, fileName)
			if err != nil {
				uc.logger.Warn("Failed to get mirrored artifact URL, serving local file",
					zap.String("task_id", id.String()),
					zap.String("file_name", fileName),
					zap.Error(err),
				)
			} else {
				artifact.URL = url
			}
		}

		return artifact, nil
	}

	return nil, domain.ErrArtifactNotFound
}

// validateInput сводит ошибки валидатора к доменным
func (uc *TaskUseCase) validateInput(input CreateTaskInput) error {
	err := uc.validator.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			switch fieldErr.Field() {
			case "SeparationType":
				return fmt.Errorf("%w: %q", domain.ErrInvalidSeparationType, input.SeparationType)
			case "Quality":
				return fmt.Errorf("%w: %q", domain.ErrInvalidQuality, input.Quality)
			}
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func (uc *TaskUseCase) discardUpload(ctx context.Context, path string, owned bool) {
	if !owned {
		return
	}
	if err := uc.fileStorage.DeleteUpload(ctx, path); err != nil {
		uc.logger.Warn("Failed to delete upload",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
