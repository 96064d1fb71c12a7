package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
)

// TaskProcessor исполняет задачу по идентификатору
type TaskProcessor interface {
	ProcessTask(ctx context.Context, taskID uuid.UUID) error
}

// TaskConsumer обрабатывает задачи из очереди.
// Реестр задач живёт в памяти процесса, поэтому потребитель запускается внутри API.
type TaskConsumer struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor TaskProcessor
	logger    *zap.Logger
}

// NewTaskConsumer создаёт новый экземпляр TaskConsumer
func NewTaskConsumer(
	redisCfg config.RedisConfig,
	queueCfg config.QueueConfig,
	processor TaskProcessor,
	logger *zap.Logger,
) *TaskConsumer {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: queueCfg.Concurrency,
			Queues: map[string]int{
				separationQueue: 10,
				"default":       1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	consumer := &TaskConsumer{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		logger:    logger,
	}

	// Регистрируем обработчики
	consumer.mux.HandleFunc(TypeAudioSeparation, consumer.handleAudioSeparation)

	return consumer
}

// Start запускает обработку задач
func (c *TaskConsumer) Start() error {
	c.logger.Info("Starting task consumer")
	return c.server.Start(c.mux)
}

// Stop останавливает обработку задач
func (c *TaskConsumer) Stop() {
	c.logger.Info("Stopping task consumer")
	c.server.Stop()
	c.server.Shutdown()
}

// handleAudioSeparation обрабатывает задачу разделения
func (c *TaskConsumer) handleAudioSeparation(ctx context.Context, t *asynq.Task) error {
	var payload AudioSeparationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.logger.Error("Failed to unmarshal payload",
			zap.Error(err),
			zap.ByteString("payload", t.Payload()),
		)
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	taskID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		c.logger.Error("Invalid task ID",
			zap.String("task_id", payload.TaskID),
			zap.Error(err),
		)
		return fmt.Errorf("invalid task ID: %v: %w", err, asynq.SkipRetry)
	}

	c.logger.Info("Processing audio separation task",
		zap.String("task_id", taskID.String()),
	)

	err = c.processor.ProcessTask(ctx, taskID)

	// Сбой исполнения уже записан в задачу
	var failure *domain.Failure
	if errors.As(err, &failure) {
		return nil
	}
	if err != nil {
		c.logger.Error("Failed to process task",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	return nil
}

// asynqLogger адаптер логгера для asynq
type asynqLogger struct {
	logger *zap.Logger
}

func newAsynqLogger(logger *zap.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.Named("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
