package domain

import (
	"context"
	"sync"
)

// Execution дескриптор фонового исполнения задачи.
// Хранится рядом с записью в реестре; отмена пока не используется
// ни одной операцией, дескриптор оставлен под будущий API отмены.
type Execution struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
}

// NewExecution создаёт дескриптор для ещё не запущенного исполнения
func NewExecution() *Execution {
	return &Execution{done: make(chan struct{})}
}

// Start привязывает исполнение к контексту и возвращает производный контекст
func (e *Execution) Start(ctx context.Context) context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	return ctx
}

// Finish отмечает исполнение завершённым; повторные вызовы игнорируются
func (e *Execution) Finish() {
	e.doneOnce.Do(func() {
		e.mu.Lock()
		if e.cancel != nil {
			e.cancel()
		}
		e.mu.Unlock()
		close(e.done)
	})
}

// Wait ждёт завершения исполнения или отмены ctx
func (e *Execution) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
