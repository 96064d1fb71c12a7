package separator

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool ограничивает число одновременно запущенных процессов разделения
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool создаёт пул на limit слотов
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// Run занимает слот на время выполнения fn.
// Возвращает ctx.Err(), если контекст отменён во время ожидания.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if p == nil || p.sem == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
