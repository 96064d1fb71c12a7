package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shakib522/Sound-Extractor/internal/adapter/http/dto"
)

// Version версия сервиса, выставляется при сборке
var Version = "1.0.0"

// HealthHandler обработчик health check и справочных запросов
type HealthHandler struct{}

// NewHealthHandler создаёт новый HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse ответ health check
type HealthResponse struct {
	Status string `json:"status"`
}

// Check проверяет состояние сервиса
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Root информация о сервисе
// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ServiceInfoResponse{
		Message: "Audio Extraction API",
		Version: Version,
		Status:  "running",
	})
}

// SupportedFormats поддерживаемые форматы, типы разделения и уровни качества
// GET /api/v1/supported-formats
func (h *HealthHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.NewSupportedFormatsResponse())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
