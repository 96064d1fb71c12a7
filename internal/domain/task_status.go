package domain

// TaskStatus статус задачи разделения аудио
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"    // создана, исполнение ещё не началось
	TaskStatusProcessing TaskStatus = "processing" // идёт разделение или постобработка
	TaskStatusCompleted  TaskStatus = "completed"  // треки готовы
	TaskStatusFailed     TaskStatus = "failed"     // исполнение прервано ошибкой
)

// IsValid проверяет валидность статуса
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// IsFinal возвращает true для поглощающих статусов
func (s TaskStatus) IsFinal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo проверяет, что переход идёт только вперёд:
// pending -> processing -> (completed | failed), а также pending -> failed
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return next == TaskStatusProcessing || next == TaskStatusFailed
	case TaskStatusProcessing:
		return next == TaskStatusCompleted || next == TaskStatusFailed
	}
	return false
}

func (s TaskStatus) String() string {
	return string(s)
}
