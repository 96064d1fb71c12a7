// Package postprocess понижает качество готовых дорожек по запросу клиента
package postprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shakib522/Sound-Extractor/internal/adapter/audio"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrUnsupportedCodec = errors.New("unsupported codec")

const optimizedSuffix = "_optimized"

// Processor перекодирует артефакты в целевую частоту дискретизации
type Processor struct {
	workers int
	logger  *zap.Logger
}

// NewProcessor создаёт новый экземпляр Processor
func NewProcessor(workers int, logger *zap.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		workers: workers,
		logger:  logger,
	}
}

// Process возвращает новый список артефактов той же длины и в том же порядке.
// Для high входные пути возвращаются как есть, исходные файлы не изменяются.
func (p *Processor) Process(ctx context.Context, artifacts []string, quality domain.Quality) ([]string, error) {
	target := quality.TargetSampleRate()
	if target == 0 {
		return slices.Clone(artifacts), nil
	}

	processed := make([]string, len(artifacts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range artifacts {
		g.Go(func() error {
			optimized, err := p.optimize(ctx, path, target)
			if err != nil {
				return fmt.Errorf("failed to optimize %s: %w", filepath.Base(path), err)
			}
			processed[i] = optimized
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("Post-processing completed",
		zap.String("quality", quality.String()),
		zap.Int("target_sample_rate", target),
		zap.Int("artifacts", len(processed)),
	)

	return processed, nil
}

func (p *Processor) optimize(ctx context.Context, path string, target int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".wav") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCodec, ext)
	}

	sig, err := audio.Load(path)
	if err != nil {
		return "", err
	}

	// Частоту не повышаем
	rate := min(sig.SampleRate, target)
	optimized := &audio.Signal{
		Samples:    audio.Resample(sig.Samples, sig.SampleRate, rate),
		SampleRate: rate,
	}

	out := OptimizedPath(path)
	if err := audio.WriteWAV(out, optimized); err != nil {
		return "", err
	}
	return out, nil
}

// OptimizedPath путь результата рядом с исходным файлом: <имя>_optimized<расширение>
func OptimizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + optimizedSuffix + ext
}
