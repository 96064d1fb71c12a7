// Package separator содержит бэкенды разделения аудио на дорожки
package separator

import (
	"context"
	"fmt"

	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
)

// AttemptStatus итог попытки разделения одним бэкендом
type AttemptStatus int

const (
	// AttemptSucceeded бэкенд вернул артефакты
	AttemptSucceeded AttemptStatus = iota
	// AttemptUnavailable бэкенд не смог отработать, нужно переходить к следующему
	AttemptUnavailable
)

func (s AttemptStatus) String() string {
	if s == AttemptSucceeded {
		return "succeeded"
	}
	return "unavailable"
}

// Attempt результат попытки разделения
type Attempt struct {
	Status    AttemptStatus
	Artifacts []string
	// Reason причина недоступности
	Reason string
}

// Succeeded конструирует успешную попытку
func Succeeded(artifacts []string) Attempt {
	return Attempt{Status: AttemptSucceeded, Artifacts: artifacts}
}

// Unavailable конструирует неудачную попытку
func Unavailable(reason string) Attempt {
	return Attempt{Status: AttemptUnavailable, Reason: reason}
}

// Err возвращает nil для успешной попытки, иначе ErrBackendUnavailable с причиной
func (a Attempt) Err() error {
	if a.Status == AttemptSucceeded {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrBackendUnavailable, a.Reason)
}

// Engine основной бэкенд, который может оказаться недоступен
type Engine interface {
	Name() string
	Separate(ctx context.Context, inputPath, outputDir string, separationType domain.SeparationType) Attempt
}

// Fallback резервный бэкенд; его ошибка завершает задачу
type Fallback interface {
	Separate(ctx context.Context, inputPath, outputDir string, separationType domain.SeparationType) ([]string, error)
}

// Strategy пробует основной бэкенд, затем резервный
type Strategy struct {
	primary  Engine
	fallback Fallback
	logger   *zap.Logger
}

// NewStrategy создаёт стратегию; primary может быть nil
func NewStrategy(primary Engine, fallback Fallback, logger *zap.Logger) *Strategy {
	return &Strategy{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Separate возвращает упорядоченный список артефактов и имя отработавшего бэкенда
func (s *Strategy) Separate(ctx context.Context, inputPath, outputDir string, separationType domain.SeparationType) (*domain.SeparationResult, error) {
	if s.primary != nil {
		attempt := s.primary.Separate(ctx, inputPath, outputDir, separationType)
		if attempt.Status == AttemptSucceeded {
			return &domain.SeparationResult{
				Artifacts: attempt.Artifacts,
				Backend:   s.primary.Name(),
			}, nil
		}

		s.logger.Warn("Primary separation backend unavailable, using fallback",
			zap.String("backend", s.primary.Name()),
			zap.Error(attempt.Err()),
		)
	}

	artifacts, err := s.fallback.Separate(ctx, inputPath, outputDir, separationType)
	if err != nil {
		return nil, err
	}

	return &domain.SeparationResult{
		Artifacts: artifacts,
		Backend:   domain.BackendFallback,
	}, nil
}
