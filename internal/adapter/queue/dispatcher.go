package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrDispatcherStopped = errors.New("dispatcher is stopped")

// LocalDispatcher запускает каждую задачу в отдельной горутине этого процесса
type LocalDispatcher struct {
	processor TaskProcessor
	logger    *zap.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewLocalDispatcher создаёт новый экземпляр LocalDispatcher
func NewLocalDispatcher(processor TaskProcessor, logger *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		processor: processor,
		logger:    logger,
	}
}

// Enqueue запускает исполнение и сразу возвращает управление.
// Исполнение не привязано к ctx вызывающего.
func (d *LocalDispatcher) Enqueue(_ context.Context, taskID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	d.wg.Add(1)
	go d.run(taskID)
	return nil
}

func (d *LocalDispatcher) run(taskID uuid.UUID) {
	defer d.wg.Done()

	if err := d.processor.ProcessTask(context.Background(), taskID); err != nil {
		d.logger.Error("Task execution finished with error",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}
}

// Stop перестаёт принимать задачи и ждёт уже запущенные, пока не истечёт ctx
func (d *LocalDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
