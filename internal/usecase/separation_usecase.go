package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
)

// SeparationUseCase фоновое исполнение задачи разделения
type SeparationUseCase struct {
	taskRepo      TaskRepository
	fileStorage   FileStorage
	separator     Separator
	postProcessor PostProcessor
	mirror        ArtifactMirror
	logger        *zap.Logger
}

// NewSeparationUseCase создаёт новый экземпляр SeparationUseCase; mirror может быть nil
func NewSeparationUseCase(
	taskRepo TaskRepository,
	fileStorage FileStorage,
	separator Separator,
	postProcessor PostProcessor,
	mirror ArtifactMirror,
	logger *zap.Logger,
) *SeparationUseCase {
	return &SeparationUseCase{
		taskRepo:      taskRepo,
		fileStorage:   fileStorage,
		separator:     separator,
		postProcessor: postProcessor,
		mirror:        mirror,
		logger:        logger,
	}
}

// ProcessTask проводит задачу от загрузки входного файла до completed или failed.
// Повторов нет: сбой любого шага завершает задачу.
func (uc *SeparationUseCase) ProcessTask(ctx context.Context, taskID uuid.UUID) error {
	execution, err := uc.taskRepo.Execution(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task execution: %w", err)
	}
	ctx = execution.Start(ctx)
	defer execution.Finish()

	uc.logger.Info("Starting task processing",
		zap.String("task_id", taskID.String()),
	)

	task, err := uc.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if task.Status.IsFinal() {
		uc.logger.Warn("Task already in final status, skipping",
			zap.String("task_id", taskID.String()),
			zap.String("status", task.Status.String()),
		)
		return nil
	}

	if err := uc.taskRepo.Update(ctx, taskID, (*domain.Task).MarkProcessing); err != nil {
		return fmt.Errorf("failed to mark task as processing: %w", err)
	}

	startTime := time.Now()
	result, failure := uc.execute(ctx, task)
	if failure != nil {
		return uc.markTaskFailed(ctx, taskID, failure)
	}

	err = uc.taskRepo.Update(ctx, taskID, func(t *domain.Task) error {
		return t.MarkCompleted(result.Artifacts, result.Backend)
	})
	if errors.Is(err, domain.ErrTaskNotFound) {
		uc.discardOrphan(ctx, taskID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	uc.logger.Info("Task completed successfully",
		zap.String("task_id", taskID.String()),
		zap.String("backend", result.Backend),
		zap.Strings("outputs", result.Artifacts),
		zap.Duration("duration", time.Since(startTime)),
	)

	return nil
}

// Wait ждёт завершения фонового исполнения задачи
func (uc *SeparationUseCase) Wait(ctx context.Context, taskID uuid.UUID) error {
	execution, err := uc.taskRepo.Execution(ctx, taskID)
	if err != nil {
		return err
	}
	return execution.Wait(ctx)
}

// execute выполняет шаги задачи; каждый шаг возвращает явный исход
func (uc *SeparationUseCase) execute(ctx context.Context, task *domain.Task) (*domain.SeparationResult, *domain.Failure) {
	exists, err := uc.fileStorage.Exists(ctx, task.InputPath)
	if err != nil {
		return nil, domain.NewFailure(domain.FailureInputNotFound, err)
	}
	if !exists {
		return nil, domain.Failuref(domain.FailureInputNotFound, "input file not found: %s", task.InputPath)
	}

	outputDir, err := uc.fileStorage.CreateTaskDir(ctx, task.ID)
	if err != nil {
		return nil, domain.NewFailure(domain.FailureInternal, err)
	}

	// Модель загружается внутри бэкенда, точка оставлена для клиентов
	if failure := uc.checkpoint(ctx, task.ID, domain.ProgressInitializing, domain.MessageInitializing); failure != nil {
		return nil, failure
	}
	if failure := uc.checkpoint(ctx, task.ID, domain.ProgressSeparating, domain.MessageSeparating); failure != nil {
		return nil, failure
	}

	separated, err := uc.separator.Separate(ctx, task.InputPath, outputDir, task.SeparationType)
	if err != nil {
		return nil, domain.NewFailure(domain.FailureSeparation, err)
	}

	uc.logger.Debug("Separation finished",
		zap.String("task_id", task.ID.String()),
		zap.String("backend", separated.Backend),
		zap.Int("artifacts", len(separated.Artifacts)),
	)

	if failure := uc.checkpoint(ctx, task.ID, domain.ProgressPostProcessing, domain.MessagePostProcessing); failure != nil {
		return nil, failure
	}

	processed, err := uc.postProcessor.Process(ctx, separated.Artifacts, task.Quality)
	if err != nil {
		return nil, domain.NewFailure(domain.FailurePostProcessing, err)
	}

	uc.mirrorArtifacts(ctx, task.ID, processed)

	return &domain.SeparationResult{
		Artifacts: processed,
		Backend:   separated.Backend,
	}, nil
}

func (uc *SeparationUseCase) checkpoint(ctx context.Context, taskID uuid.UUID, progress float64, message string) *domain.Failure {
	err := uc.taskRepo.Update(ctx, taskID, func(t *domain.Task) error {
		return t.Checkpoint(progress, message)
	})
	if err != nil {
		return domain.NewFailure(domain.FailureInternal, fmt.Errorf("failed to record progress: %w", err))
	}

	uc.logger.Debug("Task progress",
		zap.String("task_id", taskID.String()),
		zap.Float64("progress", progress),
		zap.String("message", message),
	)
	return nil
}

// mirrorArtifacts копирует результаты в S3; сбой только логируется
func (uc *SeparationUseCase) mirrorArtifacts(ctx context.Context, taskID uuid.UUID, artifacts []string) {
	if uc.mirror == nil {
		return
	}
	if err := uc.mirror.Upload(ctx, taskID, artifacts); err != nil {
		uc.logger.Warn("Failed to mirror artifacts",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}
}

// markTaskFailed записывает сбой в задачу и возвращает его вызывающему
func (uc *SeparationUseCase) markTaskFailed(ctx context.Context, taskID uuid.UUID, failure *domain.Failure) error {
	if errors.Is(failure, domain.ErrTaskNotFound) {
		uc.discardOrphan(ctx, taskID)
		return nil
	}

	uc.logger.Error("Task processing failed",
		zap.String("task_id", taskID.String()),
		zap.String("kind", string(failure.Kind)),
		zap.Error(failure),
	)

	err := uc.taskRepo.Update(ctx, taskID, func(t *domain.Task) error {
		return t.MarkFailed(failure)
	})
	if errors.Is(err, domain.ErrTaskNotFound) {
		uc.discardOrphan(ctx, taskID)
		return nil
	}
	if err != nil {
		uc.logger.Error("Failed to mark task as failed",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}

	return failure
}

// discardOrphan убирает файлы задачи, удалённой во время исполнения.
// Зеркало чистится повторно: загрузка могла закончиться уже после очистки.
func (uc *SeparationUseCase) discardOrphan(ctx context.Context, taskID uuid.UUID) {
	uc.logger.Warn("Task was removed during processing, stopping",
		zap.String("task_id", taskID.String()),
	)
	if err := uc.fileStorage.RemoveTaskDir(ctx, taskID); err != nil {
		uc.logger.Warn("Failed to remove orphaned task directory",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}
	if uc.mirror == nil {
		return
	}
	if err := uc.mirror.Remove(ctx, taskID); err != nil {
		uc.logger.Warn("Failed to remove orphaned mirrored artifacts",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}
}
