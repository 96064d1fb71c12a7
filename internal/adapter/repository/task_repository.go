package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/domain"
)

// taskEntry запись реестра вместе с дескриптором её фонового исполнения
type taskEntry struct {
	task      *domain.Task
	execution *domain.Execution
}

// TaskRepository реестр задач в памяти процесса.
// Данные не переживают перезапуск; наружу отдаются только копии записей.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*taskEntry
}

// NewTaskRepository создаёт пустой реестр
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[uuid.UUID]*taskEntry)}
}

// Create сохраняет новую задачу; идентификатор не может быть использован повторно
func (r *TaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return domain.ErrTaskExists
	}

	r.tasks[task.ID] = &taskEntry{
		task:      task.Clone(),
		execution: domain.NewExecution(),
	}
	return nil
}

// GetByID возвращает снимок задачи
func (r *TaskRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return entry.task.Clone(), nil
}

// Update применяет изменение к записи под блокировкой.
// Если mutate вернул ошибку, запись остаётся прежней.
func (r *TaskRepository) Update(_ context.Context, id uuid.UUID, mutate func(*domain.Task) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}

	updated := entry.task.Clone()
	if err := mutate(updated); err != nil {
		return err
	}
	entry.task = updated
	return nil
}

// Delete удаляет задачу из реестра
func (r *TaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// Execution возвращает дескриптор фонового исполнения задачи
func (r *TaskRepository) Execution(_ context.Context, id uuid.UUID) (*domain.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return entry.execution, nil
}

// List возвращает страницу задач, новые первыми
func (r *TaskRepository) List(_ context.Context, filter domain.TaskFilter, pagination domain.Pagination) (*domain.TaskListResult, error) {
	r.mu.RLock()
	matched := make([]*domain.Task, 0, len(r.tasks))
	for _, entry := range r.tasks {
		if filter.Match(entry.task) {
			matched = append(matched, entry.task.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *domain.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	from, to := pagination.Window(len(matched))

	return &domain.TaskListResult{
		Tasks:      matched[from:to],
		Total:      len(matched),
		Pagination: pagination,
	}, nil
}
