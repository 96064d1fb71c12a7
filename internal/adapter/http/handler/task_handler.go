package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/adapter/http/dto"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"github.com/shakib522/Sound-Extractor/internal/usecase"
	"go.uber.org/zap"
)

const (
	// Запас на поля формы сверх размера файла
	multipartOverhead = 1 << 20 // 1 MB
	// Объём формы, который держим в памяти; остальное уходит во временные файлы
	multipartMemory = 8 << 20 // 8 MB
)

// TaskHandler обработчик HTTP запросов для задач
type TaskHandler struct {
	taskUC        *usecase.TaskUseCase
	lifecycleUC   *usecase.LifecycleUseCase
	maxUploadSize int64
	logger        *zap.Logger
}

// NewTaskHandler создаёт новый TaskHandler
func NewTaskHandler(
	taskUC *usecase.TaskUseCase,
	lifecycleUC *usecase.LifecycleUseCase,
	maxUploadSize int64,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskUC:        taskUC,
		lifecycleUC:   lifecycleUC,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Create создаёт новую задачу разделения
// POST /api/v1/tasks
// Content-Type: multipart/form-data
// - file: аудиофайл
// - separation_type: тип разделения (по умолчанию vocals_accompaniment)
// - quality: high, medium или low (по умолчанию high)
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Ограничиваем размер загрузки
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	// Парсим multipart форму
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, h.fileTooLargeMessage())
			return
		}
		h.logger.Warn("Failed to parse multipart form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidRequest, "Failed to parse form data")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	// Получаем файл
	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn("Failed to get file from form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, dto.ErrCodeFileRequired, "File is required")
		return
	}
	defer file.Close()

	input := usecase.CreateTaskInput{
		FileName:       header.Filename,
		FileSize:       header.Size,
		FileReader:     file,
		SeparationType: r.FormValue("separation_type"),
		Quality:        r.FormValue("quality"),
	}

	task, err := h.taskUC.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedFileType):
			h.respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidFileType,
				"Unsupported file format. Supported formats: "+strings.Join(domain.SupportedFormats(), ", "))
		case errors.Is(err, domain.ErrFileTooLarge):
			h.respondError(w, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, h.fileTooLargeMessage())
		case errors.Is(err, domain.ErrInvalidSeparationType):
			h.respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidSeparationType, err.Error())
		case errors.Is(err, domain.ErrInvalidQuality):
			h.respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidQuality, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			h.respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidRequest, err.Error())
		default:
			h.logger.Error("Failed to create task", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to create task")
		}
		return
	}

	h.respondJSON(w, http.StatusAccepted, dto.CreateTaskFromDomain(task))
}

// GetByID возвращает задачу по ID
// GET /api/v1/tasks/{id}
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	task, err := h.taskUC.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.respondError(w, http.StatusNotFound, dto.ErrCodeNotFound, "Task not found")
			return
		}
		h.logger.Error("Failed to get task", zap.String("task_id", id.String()), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to get task")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.TaskFromDomain(task))
}

// List возвращает список задач
// GET /api/v1/tasks?page=1&page_size=20&status=pending
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	// Парсим параметры пагинации
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	pagination := domain.NewPagination(page, pageSize)

	// Парсим фильтры
	filter := domain.TaskFilter{}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.TaskStatus(statusStr)
		if status.IsValid() {
			filter.Status = &status
		}
	}

	result, err := h.taskUC.List(r.Context(), filter, pagination)
	if err != nil {
		h.logger.Error("Failed to list tasks", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to list tasks")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.TaskListFromDomain(result))
}

// Download отдаёт готовый файл задачи
// GET /api/v1/tasks/{id}/files/{filename}
func (h *TaskHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	fileName := chi.URLParam(r, "filename")

	artifact, err := h.taskUC.ResolveArtifact(r.Context(), id, fileName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			h.respondError(w, http.StatusNotFound, dto.ErrCodeNotFound, "Task not found")
		case errors.Is(err, domain.ErrTaskNotCompleted):
			h.respondError(w, http.StatusBadRequest, dto.ErrCodeTaskNotCompleted, "Task not completed yet")
		case errors.Is(err, domain.ErrArtifactNotFound):
			h.respondError(w, http.StatusNotFound, dto.ErrCodeFileNotFound, "File not found")
		default:
			h.logger.Error("Failed to resolve artifact",
				zap.String("task_id", id.String()),
				zap.String("file_name", fileName),
				zap.Error(err),
			)
			h.respondError(w, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to get file")
		}
		return
	}

	if artifact.URL != "" {
		http.Redirect(w, r, artifact.URL, http.StatusTemporaryRedirect)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	http.ServeFile(w, r, artifact.Path)
}

// Delete удаляет задачу и её файлы
// DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	err := h.lifecycleUC.Cleanup(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.respondError(w, http.StatusNotFound, dto.ErrCodeNotFound, "Task not found")
			return
		}
		h.logger.Error("Failed to delete task", zap.String("task_id", id.String()), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid task ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) fileTooLargeMessage() string {
	return fmt.Sprintf("Maximum file size is %dMB", h.maxUploadSize>>20)
}

// respondJSON отправляет JSON ответ
func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError отправляет ответ с ошибкой
func (h *TaskHandler) respondError(w http.ResponseWriter, status int, errCode string, message string) {
	h.respondJSON(w, status, dto.NewErrorResponse(errCode, message))
}
