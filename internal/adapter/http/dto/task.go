package dto

import (
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/domain"
)

// CreateTaskResponse ответ на создание задачи
type CreateTaskResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskResponse ответ с информацией о задаче
type TaskResponse struct {
	TaskID         string     `json:"task_id"`
	Status         string     `json:"status"`
	Progress       float64    `json:"progress"`
	Message        string     `json:"message"`
	SeparationType string     `json:"separation_type"`
	Quality        string     `json:"quality"`
	Backend        string     `json:"backend,omitempty"`
	OutputFiles    []string   `json:"output_files,omitempty"`
	DownloadURLs   []string   `json:"download_urls,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// DownloadPath путь скачивания артефакта задачи
func DownloadPath(taskID uuid.UUID, fileName string) string {
	return path.Join("/api/v1/tasks", taskID.String(), "files", url.PathEscape(fileName))
}

// CreateTaskFromDomain конвертирует только что созданную задачу в DTO
func CreateTaskFromDomain(task *domain.Task) *CreateTaskResponse {
	return &CreateTaskResponse{
		TaskID:  task.ID.String(),
		Status:  task.Status.String(),
		Message: task.Message,
	}
}

// TaskFromDomain конвертирует доменную модель в DTO
func TaskFromDomain(task *domain.Task) *TaskResponse {
	resp := &TaskResponse{
		TaskID:         task.ID.String(),
		Status:         task.Status.String(),
		Progress:       task.Progress,
		Message:        task.Message,
		SeparationType: task.SeparationType.String(),
		Quality:        task.Quality.String(),
		Backend:        task.Backend,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		CompletedAt:    task.CompletedAt,
	}

	for _, output := range task.Outputs {
		name := filepath.Base(output)
		resp.OutputFiles = append(resp.OutputFiles, name)
		resp.DownloadURLs = append(resp.DownloadURLs, DownloadPath(task.ID, name))
	}

	return resp
}

// TaskListResponse ответ со списком задач
type TaskListResponse struct {
	Tasks      []*TaskResponse `json:"tasks"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// TaskListFromDomain конвертирует результат списка в DTO
func TaskListFromDomain(result *domain.TaskListResult) *TaskListResponse {
	tasks := make([]*TaskResponse, len(result.Tasks))
	for i, task := range result.Tasks {
		tasks[i] = TaskFromDomain(task)
	}

	return &TaskListResponse{
		Tasks:      tasks,
		Total:      result.Total,
		Page:       result.Pagination.Page,
		PageSize:   result.Pagination.PageSize,
		TotalPages: result.Pagination.TotalPages(result.Total),
	}
}
