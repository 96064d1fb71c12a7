package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Ошибки домена
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskExists         = errors.New("task already exists")
	ErrInvalidTaskStatus  = errors.New("invalid task status transition")
	ErrProgressRegression = errors.New("progress cannot decrease")
	ErrEmptyInput         = errors.New("input reference cannot be empty")
	ErrTaskNotCompleted   = errors.New("task not completed yet")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// Сообщения контрольных точек, на которые опираются клиенты
const (
	MessageCreated        = "Task created"
	MessageLoading        = "Loading audio file..."
	MessageInitializing   = "Initializing separation model..."
	MessageSeparating     = "Separating audio tracks..."
	MessagePostProcessing = "Post-processing audio files..."
	MessageCompleted      = "Processing completed successfully"
)

// Значения прогресса контрольных точек
const (
	ProgressCreated        = 0.0
	ProgressLoading        = 0.1
	ProgressInitializing   = 0.2
	ProgressSeparating     = 0.3
	ProgressPostProcessing = 0.8
	ProgressCompleted      = 1.0
)

// Task запись задачи разделения аудио
type Task struct {
	ID             uuid.UUID      `json:"id"`
	Status         TaskStatus     `json:"status"`
	Progress       float64        `json:"progress"`
	Message        string         `json:"message"`
	InputPath      string         `json:"input_path"`
	SeparationType SeparationType `json:"separation_type"`
	Quality        Quality        `json:"quality"`
	Outputs        []string       `json:"outputs,omitempty"` // заполняется только вместе с completed
	Backend        string         `json:"backend,omitempty"` // spleeter или fallback
	OwnsInput      bool           `json:"-"`                 // входной файл загружен через API и удаляется при очистке
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// NewTask создаёт задачу в статусе pending
func NewTask(inputPath string, separationType SeparationType, quality Quality) (*Task, error) {
	if inputPath == "" {
		return nil, ErrEmptyInput
	}
	if !separationType.IsValid() {
		return nil, ErrInvalidSeparationType
	}
	if !quality.IsValid() {
		return nil, ErrInvalidQuality
	}

	now := time.Now()

	return &Task{
		ID:             uuid.New(),
		Status:         TaskStatusPending,
		Progress:       ProgressCreated,
		Message:        MessageCreated,
		InputPath:      inputPath,
		SeparationType: separationType,
		Quality:        quality,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MarkProcessing переводит задачу в processing и ставит первую контрольную точку
func (t *Task) MarkProcessing() error {
	if !t.Status.CanTransitionTo(TaskStatusProcessing) {
		return ErrInvalidTaskStatus
	}
	t.Status = TaskStatusProcessing
	return t.Checkpoint(ProgressLoading, MessageLoading)
}

// Checkpoint записывает пару (прогресс, сообщение) для задачи в обработке
func (t *Task) Checkpoint(progress float64, message string) error {
	if t.Status != TaskStatusProcessing {
		return ErrInvalidTaskStatus
	}
	if progress < t.Progress || progress > ProgressCompleted {
		return ErrProgressRegression
	}
	t.Progress = progress
	t.Message = message
	t.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted завершает задачу; выходные файлы выставляются одновременно со статусом
func (t *Task) MarkCompleted(outputs []string, backend string) error {
	if !t.Status.CanTransitionTo(TaskStatusCompleted) {
		return ErrInvalidTaskStatus
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.Progress = ProgressCompleted
	t.Message = MessageCompleted
	t.Outputs = slices.Clone(outputs)
	t.Backend = backend
	t.UpdatedAt = now
	t.CompletedAt = &now
	return nil
}

// MarkFailed переводит задачу в failed; прогресс остаётся на последней контрольной точке
func (t *Task) MarkFailed(failure *Failure) error {
	if !t.Status.CanTransitionTo(TaskStatusFailed) {
		return ErrInvalidTaskStatus
	}
	now := time.Now()
	t.Status = TaskStatusFailed
	t.Message = failure.Message()
	t.Outputs = nil
	t.UpdatedAt = now
	t.CompletedAt = &now
	return nil
}

// Clone возвращает независимую копию записи
func (t *Task) Clone() *Task {
	c := *t
	c.Outputs = slices.Clone(t.Outputs)
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		c.CompletedAt = &completedAt
	}
	return &c
}
