package separator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/shakib522/Sound-Extractor/internal/adapter/audio"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
)

// fallbackSegments число временных сегментов для многодорожечных типов
const fallbackSegments = 4

// FallbackSeparator разделение внутри процесса без внешнего движка.
// Для vocals_accompaniment выделяет гармоническую составляющую и остаток,
// для остальных типов режет сигнал на равные сегменты по времени.
type FallbackSeparator struct {
	logger *zap.Logger
}

// NewFallbackSeparator создаёт новый экземпляр FallbackSeparator
func NewFallbackSeparator(logger *zap.Logger) *FallbackSeparator {
	return &FallbackSeparator{logger: logger}
}

// Separate пишет артефакты в outputDir
func (f *FallbackSeparator) Separate(ctx context.Context, inputPath, outputDir string, separationType domain.SeparationType) ([]string, error) {
	f.logger.Info("Using fallback separation",
		zap.String("input", inputPath),
		zap.String("separation_type", separationType.String()),
	)

	sig, err := audio.Load(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio: %w", err)
	}

	f.logger.Debug("Input decoded",
		zap.Int("sample_rate", sig.SampleRate),
		zap.Duration("duration", sig.Duration()),
	)

	parts := make(map[string][]float64)
	var names []string

	if separationType == domain.SeparationVocalsAccompaniment {
		vocals := audio.Harmonic(sig.Samples)
		parts["vocals.wav"] = vocals
		parts["accompaniment.wav"] = audio.Residual(sig.Samples, vocals)
		names = []string{"vocals.wav", "accompaniment.wav"}
	} else {
		for i, segment := range audio.Split(sig.Samples, fallbackSegments) {
			name := fmt.Sprintf("segment_%d.wav", i+1)
			parts[name] = segment
			names = append(names, name)
		}
	}

	artifacts := make([]string, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(outputDir, name)
		if err := audio.WriteWAV(path, &audio.Signal{Samples: parts[name], SampleRate: sig.SampleRate}); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		artifacts = append(artifacts, path)
	}

	return artifacts, nil
}
