package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("/tmp/input.wav", domain.SeparationVocalsAccompaniment, domain.QualityHigh)
	require.NoError(t, err)
	return task
}

func TestTaskRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	task := newTask(t)

	require.NoError(t, repo.Create(ctx, task))
	assert.ErrorIs(t, repo.Create(ctx, task), domain.ErrTaskExists)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, domain.TaskStatusPending, got.Status)

	// Снимок не связан с хранимой записью
	got.Message = "changed"
	again, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageCreated, again.Message)
}

func TestTaskRepository_GetUnknown(t *testing.T) {
	_, err := NewTaskRepository().GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	task := newTask(t)
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.Update(ctx, task.ID, (*domain.Task).MarkProcessing))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
	assert.Equal(t, domain.ProgressLoading, got.Progress)

	// Ошибка в mutate не оставляет частичных изменений
	boom := errors.New("boom")
	err = repo.Update(ctx, task.ID, func(t *domain.Task) error {
		t.Message = "half-written"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageLoading, got.Message)

	assert.ErrorIs(t, repo.Update(ctx, uuid.New(), (*domain.Task).MarkProcessing), domain.ErrTaskNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	task := newTask(t)
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), domain.ErrTaskNotFound)

	_, err := repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = repo.Execution(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepository_Execution(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	task := newTask(t)
	require.NoError(t, repo.Create(ctx, task))

	exec, err := repo.Execution(ctx, task.ID)
	require.NoError(t, err)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, exec.Wait(cancelled), context.Canceled, "execution of a pending task is not finished")

	same, err := repo.Execution(ctx, task.ID)
	require.NoError(t, err)
	assert.Same(t, exec, same)
}

func TestTaskRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	base := time.Now()
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		task := newTask(t)
		task.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if i%2 == 0 {
			require.NoError(t, task.MarkProcessing())
		}
		require.NoError(t, repo.Create(ctx, task))
		ids[i] = task.ID
	}

	result, err := repo.List(ctx, domain.TaskFilter{}, domain.NewPagination(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	require.Len(t, result.Tasks, 2)
	assert.Equal(t, ids[4], result.Tasks[0].ID)
	assert.Equal(t, ids[3], result.Tasks[1].ID)

	result, err = repo.List(ctx, domain.TaskFilter{}, domain.NewPagination(3, 2))
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, ids[0], result.Tasks[0].ID)

	processing := domain.TaskStatusProcessing
	result, err = repo.List(ctx, domain.TaskFilter{Status: &processing}, domain.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	for _, task := range result.Tasks {
		assert.Equal(t, domain.TaskStatusProcessing, task.Status)
	}
}

func TestTaskRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := domain.NewTask("/tmp/x.wav", domain.SeparationVocalsAccompaniment, domain.QualityLow)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, repo.Create(ctx, task))
			assert.NoError(t, repo.Update(ctx, task.ID, (*domain.Task).MarkProcessing))
			for _, p := range []float64{domain.ProgressInitializing, domain.ProgressSeparating, domain.ProgressPostProcessing} {
				assert.NoError(t, repo.Update(ctx, task.ID, func(t *domain.Task) error {
					return t.Checkpoint(p, "step")
				}))
				_, err := repo.GetByID(ctx, task.ID)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	result, err := repo.List(ctx, domain.TaskFilter{}, domain.NewPagination(1, 100))
	require.NoError(t, err)
	assert.Equal(t, 20, result.Total)
}
