package separator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"go.uber.org/zap"
)

const probeCacheKey = "spleeter"

// Модели spleeter для каждого типа разделения
var spleeterModels = map[domain.SeparationType]string{
	domain.SeparationVocalsAccompaniment:       "spleeter:2stems",
	domain.SeparationVocalsDrumsBassOther:      "spleeter:4stems",
	domain.SeparationVocalsDrumsBassPianoOther: "spleeter:5stems",
}

// probeResult закэшированный результат проверки доступности
type probeResult struct {
	available bool
	reason    string
}

// SpleeterEngine запускает spleeter отдельным процессом
type SpleeterEngine struct {
	pythonBin string
	pool      *Pool
	probes    *ristretto.Cache[string, probeResult]
	probeTTL  time.Duration
	logger    *zap.Logger

	// execCommand подменяется в тестах
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewSpleeterEngine создаёт новый экземпляр SpleeterEngine
func NewSpleeterEngine(cfg config.SeparatorConfig, logger *zap.Logger) (*SpleeterEngine, error) {
	probes, err := ristretto.NewCache(&ristretto.Config[string, probeResult]{
		NumCounters:        100,
		MaxCost:            10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create probe cache: %w", err)
	}

	return &SpleeterEngine{
		pythonBin:   cfg.PythonBin,
		pool:        NewPool(cfg.MaxConcurrent),
		probes:      probes,
		probeTTL:    cfg.ProbeTTL,
		logger:      logger,
		execCommand: exec.CommandContext,
	}, nil
}

// Name имя бэкенда
func (e *SpleeterEngine) Name() string {
	return domain.BackendSpleeter
}

// ModelFor возвращает модель spleeter; неизвестный тип получает 2stems
func ModelFor(separationType domain.SeparationType) string {
	if model, ok := spleeterModels[separationType]; ok {
		return model
	}
	return spleeterModels[domain.SeparationVocalsAccompaniment]
}

// CheckHealth проверяет, что spleeter установлен, и обновляет кэш проверки
func (e *SpleeterEngine) CheckHealth(ctx context.Context) error {
	result := e.probe(ctx)
	if !result.available {
		return fmt.Errorf("spleeter is not available: %s", result.reason)
	}
	return nil
}

// Separate запускает spleeter и собирает дорожки в порядке модели
func (e *SpleeterEngine) Separate(ctx context.Context, inputPath, outputDir string, separationType domain.SeparationType) Attempt {
	if result := e.cachedProbe(ctx); !result.available {
		return Unavailable(result.reason)
	}

	model := ModelFor(separationType)
	args := []string{
		"-m", "spleeter", "separate",
		"--output_path", outputDir,
		"--params_filename", model,
		inputPath,
	}

	e.logger.Info("Running spleeter",
		zap.String("model", model),
		zap.String("input", inputPath),
		zap.String("output_dir", outputDir),
	)

	startTime := time.Now()
	err := e.pool.Run(ctx, func() error {
		output, err := e.execCommand(ctx, e.pythonBin, args...).CombinedOutput()
		if err != nil {
			e.logger.Warn("Spleeter process failed",
				zap.Error(err),
				zap.String("output", truncate(string(output), 2048)),
			)
		}
		return err
	})
	if err != nil {
		return Unavailable(fmt.Sprintf("spleeter failed: %v", err))
	}

	e.logger.Debug("Spleeter completed",
		zap.Duration("duration", time.Since(startTime)),
	)

	artifacts, err := collectStems(outputDir, inputPath, separationType.Stems())
	if err != nil {
		return Unavailable(err.Error())
	}

	return Succeeded(artifacts)
}

// Close освобождает кэш проверок
func (e *SpleeterEngine) Close() {
	e.probes.Close()
}

func (e *SpleeterEngine) cachedProbe(ctx context.Context) probeResult {
	if result, ok := e.probes.Get(probeCacheKey); ok {
		return result
	}
	return e.probe(ctx)
}

func (e *SpleeterEngine) probe(ctx context.Context) probeResult {
	result := probeResult{available: true}
	if err := e.execCommand(ctx, e.pythonBin, "-m", "spleeter", "--help").Run(); err != nil {
		result = probeResult{reason: fmt.Sprintf("spleeter probe failed: %v", err)}
	}

	e.probes.SetWithTTL(probeCacheKey, result, 1, e.probeTTL)
	e.probes.Wait()
	return result
}

// collectStems ищет дорожки в <outputDir>/<имя входного файла без расширения>
func collectStems(outputDir, inputPath string, stems []string) ([]string, error) {
	base := filepath.Base(inputPath)
	stemDir := filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base)))

	artifacts := make([]string, 0, len(stems))
	for _, stem := range stems {
		path := filepath.Join(stemDir, stem+".wav")
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("spleeter output is missing stem %q", stem)
		}
		artifacts = append(artifacts, path)
	}
	return artifacts, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
