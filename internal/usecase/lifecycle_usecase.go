package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleUseCase очистка задач и их файлов
type LifecycleUseCase struct {
	taskRepo    TaskRepository
	fileStorage FileStorage
	mirror      ArtifactMirror
	logger      *zap.Logger
}

// NewLifecycleUseCase создаёт новый экземпляр LifecycleUseCase; mirror может быть nil
func NewLifecycleUseCase(
	taskRepo TaskRepository,
	fileStorage FileStorage,
	mirror ArtifactMirror,
	logger *zap.Logger,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		taskRepo:    taskRepo,
		fileStorage: fileStorage,
		mirror:      mirror,
		logger:      logger,
	}
}

// Cleanup удаляет запись задачи и каталог её результатов.
// Исполнение, если оно ещё идёт, не отменяется: оно остановится на следующей контрольной точке.
func (uc *LifecycleUseCase) Cleanup(ctx context.Context, id uuid.UUID) error {
	task, err := uc.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	// Сбои удаления файлов не возвращают запись
	if err := uc.fileStorage.RemoveTaskDir(ctx, id); err != nil {
		uc.logger.Warn("Failed to remove task directory",
			zap.String("task_id", id.String()),
			zap.Error(err),
		)
	}

	if task.OwnsInput {
		if err := uc.fileStorage.DeleteUpload(ctx, task.InputPath); err != nil {
			uc.logger.Warn("Failed to delete uploaded input",
				zap.String("task_id", id.String()),
				zap.String("path", task.InputPath),
				zap.Error(err),
			)
		}
	}

	if uc.mirror != nil {
		if err := uc.mirror.Remove(ctx, id); err != nil {
			uc.logger.Warn("Failed to remove mirrored artifacts",
				zap.String("task_id", id.String()),
				zap.Error(err),
			)
		}
	}

	uc.logger.Info("Task cleaned up successfully",
		zap.String("task_id", id.String()),
	)

	return nil
}
