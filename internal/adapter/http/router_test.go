package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	apihttp "github.com/shakib522/Sound-Extractor/internal/adapter/http"
	"github.com/shakib522/Sound-Extractor/internal/adapter/http/dto"
	"github.com/shakib522/Sound-Extractor/internal/adapter/http/handler"
	"github.com/shakib522/Sound-Extractor/internal/adapter/repository"
	"github.com/shakib522/Sound-Extractor/internal/adapter/storage"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"github.com/shakib522/Sound-Extractor/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *captureQueue) Enqueue(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
	return nil
}

type testServer struct {
	router  http.Handler
	repo    *repository.TaskRepository
	storage *storage.LocalStorage
	queue   *captureQueue
}

func newTestServer(t *testing.T, maxUploadSize int64) *testServer {
	t.Helper()
	logger := zap.NewNop()

	root := t.TempDir()
	local, err := storage.NewLocalStorage(config.StorageConfig{
		UploadDir: filepath.Join(root, "uploads"),
		OutputDir: filepath.Join(root, "outputs"),
	})
	require.NoError(t, err)

	repo := repository.NewTaskRepository()
	queue := &captureQueue{}

	taskUC := usecase.NewTaskUseCase(repo, local, queue, nil, maxUploadSize, logger)
	lifecycleUC := usecase.NewLifecycleUseCase(repo, local, nil, logger)

	router := apihttp.NewRouter(
		handler.NewTaskHandler(taskUC, lifecycleUC, maxUploadSize, logger),
		handler.NewHealthHandler(),
		logger,
	)

	return &testServer{router: router, repo: repo, storage: local, queue: queue}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, fileName string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// completeTask переводит задачу в completed с одним артефактом
func (s *testServer) completeTask(t *testing.T, id uuid.UUID, content []byte) string {
	t.Helper()
	ctx := context.Background()

	dir, err := s.storage.CreateTaskDir(ctx, id)
	require.NoError(t, err)
	path := filepath.Join(dir, "vocals.wav")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	require.NoError(t, s.repo.Update(ctx, id, (*domain.Task).MarkProcessing))
	require.NoError(t, s.repo.Update(ctx, id, func(task *domain.Task) error {
		return task.MarkCompleted([]string{path}, domain.BackendFallback)
	}))
	return path
}

func TestMetaEndpoints(t *testing.T) {
	s := newTestServer(t, domain.MaxUploadSize)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[handler.HealthResponse](t, rec).Status)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", decode[dto.ServiceInfoResponse](t, rec).Status)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/supported-formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	formats := decode[dto.SupportedFormatsResponse](t, rec)
	assert.Equal(t, []string{"mp3", "wav", "flac", "ogg"}, formats.SupportedFormats)
	require.Len(t, formats.SeparationTypes, 3)
	assert.Equal(t, 2, formats.SeparationTypes[0].OutputFiles)
	assert.Equal(t, 4, formats.SeparationTypes[1].OutputFiles)
	assert.Equal(t, 5, formats.SeparationTypes[2].OutputFiles)
	assert.Len(t, formats.QualityOptions, 3)
}

func TestCreateTask(t *testing.T) {
	s := newTestServer(t, domain.MaxUploadSize)

	rec := s.do(t, uploadRequest(t, "song.wav", []byte("RIFF...."), map[string]string{
		"separation_type": "vocals_drums_bass_other",
		"quality":         "medium",
	}))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decode[dto.CreateTaskResponse](t, rec)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, domain.MessageCreated, resp.Message)

	id, err := uuid.Parse(resp.TaskID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, s.queue.ids)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	task := decode[dto.TaskResponse](t, rec)
	assert.Equal(t, "vocals_drums_bass_other", task.SeparationType)
	assert.Equal(t, "medium", task.Quality)
	assert.Zero(t, task.Progress)
}

func TestCreateTask_Errors(t *testing.T) {
	tests := []struct {
		name          string
		maxUploadSize int64
		fileName      string
		content       []byte
		fields        map[string]string
		status        int
		code          string
	}{
		{
			name:     "missing file",
			status:   http.StatusBadRequest,
			code:     "file_required",
			fields:   map[string]string{"quality": "high"},
			content:  nil,
			fileName: "",
		},
		{
			name:     "unsupported extension",
			fileName: "notes.txt",
			content:  []byte("hello"),
			status:   http.StatusBadRequest,
			code:     "invalid_file_type",
		},
		{
			name:     "m4a is rejected before a task exists",
			fileName: "song.m4a",
			content:  []byte("ftypM4A "),
			status:   http.StatusBadRequest,
			code:     "invalid_file_type",
		},
		{
			name:     "unknown separation type",
			fileName: "song.mp3",
			content:  []byte("ID3"),
			fields:   map[string]string{"separation_type": "drums_only"},
			status:   http.StatusBadRequest,
			code:     "invalid_separation_type",
		},
		{
			name:     "unknown quality",
			fileName: "song.mp3",
			content:  []byte("ID3"),
			fields:   map[string]string{"quality": "lossless"},
			status:   http.StatusBadRequest,
			code:     "invalid_quality",
		},
		{
			name:          "file too large",
			maxUploadSize: 1024,
			fileName:      "song.wav",
			content:       bytes.Repeat([]byte{1}, 4096),
			status:        http.StatusRequestEntityTooLarge,
			code:          "file_too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := tt.maxUploadSize
			if limit == 0 {
				limit = domain.MaxUploadSize
			}
			s := newTestServer(t, limit)

			rec := s.do(t, uploadRequest(t, tt.fileName, tt.content, tt.fields))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, rec).Error)
			assert.Empty(t, s.queue.ids)
		})
	}
}

func TestGetTask_Errors(t *testing.T) {
	s := newTestServer(t, domain.MaxUploadSize)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[dto.ErrorResponse](t, rec).Error)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decode[dto.ErrorResponse](t, rec).Error)
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, domain.MaxUploadSize)

	rec := s.do(t, uploadRequest(t, "song.wav", []byte("RIFF"), nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := uuid.MustParse(decode[dto.CreateTaskResponse](t, rec).TaskID)
	fileURL := "/api/v1/tasks/" + id.String() + "/files/vocals.wav"

	rec = s.do(t, httptest.NewRequest(http.MethodGet, fileURL, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "task_not_completed", decode[dto.ErrorResponse](t, rec).Error)

	content := []byte("RIFF-fake-wav-content")
	s.completeTask(t, id, content)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, fileURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="vocals.wav"`)
	assert.Equal(t, content, rec.Body.Bytes())

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String()+"/files/drums.wav", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "file_not_found", decode[dto.ErrorResponse](t, rec).Error)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	task := decode[dto.TaskResponse](t, rec)
	assert.Equal(t, "completed", task.Status)
	assert.Equal(t, 1.0, task.Progress)
	assert.Equal(t, []string{"vocals.wav"}, task.OutputFiles)
	assert.Equal(t, []string{fileURL}, task.DownloadURLs)
}

func TestListTasks(t *testing.T) {
	s := newTestServer(t, domain.MaxUploadSize)

	for range 3 {
		rec := s.do(t, uploadRequest(t, "song.wav", []byte("RIFF"), nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks?page=1&page_size=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.TaskListResponse](t, rec)
	assert.Equal(t, 3, list.Total)
	assert.Len(t, list.Tasks, 2)
	assert.Equal(t, 2, list.TotalPages)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks?status=completed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[dto.TaskListResponse](t, rec).Total)
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t, domain.MaxUploadSize)

	rec := s.do(t, uploadRequest(t, "song.wav", []byte("RIFF"), nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := uuid.MustParse(decode[dto.CreateTaskResponse](t, rec).TaskID)
	s.completeTask(t, id, []byte("RIFF"))

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := os.Stat(s.storage.TaskDir(id))
	assert.ErrorIs(t, err, os.ErrNotExist)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
