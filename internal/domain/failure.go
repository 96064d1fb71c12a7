package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInputNotFound        = errors.New("input file not found")
	ErrBackendUnavailable   = errors.New("separation backend unavailable")
	ErrSeparationFailed     = errors.New("separation failed")
	ErrPostProcessingFailed = errors.New("post-processing failed")
)

// FailureKind вид сбоя фонового исполнения
type FailureKind string

const (
	FailureInputNotFound  FailureKind = "input_not_found"
	FailureSeparation     FailureKind = "separation_failure"
	FailurePostProcessing FailureKind = "post_processing_failure"
	FailureInternal       FailureKind = "internal"
)

// Недоступность бэкенда (ErrBackendUnavailable) не становится сбоем задачи:
// её перехватывает переход на резервный разделитель.
var failureSentinels = map[FailureKind]error{
	FailureInputNotFound:  ErrInputNotFound,
	FailureSeparation:     ErrSeparationFailed,
	FailurePostProcessing: ErrPostProcessingFailed,
}

// Failure исход шага исполнения, завершившегося ошибкой
type Failure struct {
	Kind  FailureKind
	Cause error
}

// NewFailure создаёт исход с заданной причиной
func NewFailure(kind FailureKind, cause error) *Failure {
	return &Failure{Kind: kind, Cause: cause}
}

// Failuref создаёт исход с форматированной причиной
func Failuref(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Message текст, который записывается в поле message задачи
func (f *Failure) Message() string {
	return "Processing failed: " + f.Error()
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return string(f.Kind)
	}
	return f.Cause.Error()
}

// Is сопоставляет сбой с доменной ошибкой его вида
func (f *Failure) Is(target error) bool {
	sentinel, ok := failureSentinels[f.Kind]
	return ok && sentinel == target
}

func (f *Failure) Unwrap() error {
	return f.Cause
}
