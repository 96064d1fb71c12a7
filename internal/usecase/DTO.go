package usecase

import (
	"io"
)

// CreateTaskInput входные данные для создания задачи.
// Задаётся либо загруженный файл (FileName + FileReader), либо путь к уже лежащему на диске файлу.
type CreateTaskInput struct {
	FileName       string    `validate:"required_without=InputPath"` // Имя загруженного файла
	FileSize       int64     // Размер файла
	FileReader     io.Reader // Содержимое файла
	InputPath      string    `validate:"required_without=FileName"` // Путь к файлу на диске
	SeparationType string    `validate:"oneof=vocals_accompaniment vocals_drums_bass_other vocals_drums_bass_piano_other"`
	Quality        string    `validate:"oneof=high medium low"`
}

// Artifact готовый файл задачи для скачивания
type Artifact struct {
	FileName    string
	Path        string // локальный путь
	URL         string // presigned URL, если включено зеркало
	ContentType string
}
