package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shakib522/Sound-Extractor/internal/config"
)

// Типы задач
const (
	TypeAudioSeparation = "audio:separation"
)

// Очередь задач разделения
const separationQueue = "separation"

// AudioSeparationPayload данные задачи на разделение
type AudioSeparationPayload struct {
	TaskID string `json:"task_id"`
}

// NewAudioSeparationTask формирует задачу asynq.
// Повторов нет: исход записывается в реестр с первой попытки.
func NewAudioSeparationTask(taskID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(AudioSeparationPayload{
		TaskID: taskID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return asynq.NewTask(TypeAudioSeparation, payload,
		asynq.MaxRetry(0),
		asynq.Queue(separationQueue),
	), nil
}

// TaskProducer отправляет задачи в очередь Redis
type TaskProducer struct {
	client *asynq.Client
}

// NewTaskProducer создаёт новый экземпляр TaskProducer
func NewTaskProducer(cfg config.RedisConfig) *TaskProducer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &TaskProducer{client: client}
}

// Enqueue добавляет задачу в очередь
func (p *TaskProducer) Enqueue(ctx context.Context, taskID uuid.UUID) error {
	task, err := NewAudioSeparationTask(taskID)
	if err != nil {
		return err
	}

	_, err = p.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Close закрывает соединение
func (p *TaskProducer) Close() error {
	return p.client.Close()
}
