package dto

// Коды ошибок API
const (
	ErrCodeInvalidRequest        = "invalid_request"
	ErrCodeInvalidID             = "invalid_id"
	ErrCodeFileRequired          = "file_required"
	ErrCodeInvalidFileType       = "invalid_file_type"
	ErrCodeFileTooLarge          = "file_too_large"
	ErrCodeInvalidSeparationType = "invalid_separation_type"
	ErrCodeInvalidQuality        = "invalid_quality"
	ErrCodeNotFound              = "not_found"
	ErrCodeTaskNotCompleted      = "task_not_completed"
	ErrCodeFileNotFound          = "file_not_found"
	ErrCodeInternal              = "internal_error"
)

// ErrorResponse тело ответа с ошибкой: машинный код и текст для человека
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: code, Message: message}
}
