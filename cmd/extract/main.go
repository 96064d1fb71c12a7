// Команда extract прогоняет один файл через тот же конвейер, что и API,
// и печатает итоговую запись задачи в JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shakib522/Sound-Extractor/internal/adapter/postprocess"
	"github.com/shakib522/Sound-Extractor/internal/adapter/queue"
	"github.com/shakib522/Sound-Extractor/internal/adapter/repository"
	"github.com/shakib522/Sound-Extractor/internal/adapter/separator"
	"github.com/shakib522/Sound-Extractor/internal/adapter/storage"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/shakib522/Sound-Extractor/internal/domain"
	"github.com/shakib522/Sound-Extractor/internal/usecase"
	"github.com/shakib522/Sound-Extractor/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "path to the audio file")
	separationType := fs.String("type", domain.SeparationVocalsAccompaniment.String(), "separation type")
	quality := fs.String("quality", domain.QualityHigh.String(), "output quality: high, medium or low")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		fmt.Fprintln(stderr, "extract: -input is required")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "extract:", err)
		return 1
	}

	// Логи уходят в stderr, stdout занят результатом
	log, err := logger.NewWithWriter(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "extract:", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	task, err := extract(ctx, cfg, usecase.CreateTaskInput{
		InputPath:      *input,
		SeparationType: *separationType,
		Quality:        *quality,
	}, log)
	if err != nil {
		log.Error("Extraction failed", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(task); err != nil {
		log.Error("Failed to encode result", zap.Error(err))
		return 1
	}

	if task.Status != domain.TaskStatusCompleted {
		return 1
	}
	return 0
}

// extract создаёт задачу, ждёт её завершения и возвращает итоговую запись
func extract(ctx context.Context, cfg *config.Config, input usecase.CreateTaskInput, log *zap.Logger) (*domain.Task, error) {
	fileStorage, err := storage.NewLocalStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var primary separator.Engine
	if cfg.Separator.SpleeterEnabled {
		spleeter, err := separator.NewSpleeterEngine(cfg.Separator, log)
		if err != nil {
			return nil, err
		}
		defer spleeter.Close()
		primary = spleeter
	}
	strategy := separator.NewStrategy(primary, separator.NewFallbackSeparator(log), log)
	postProcessor := postprocess.NewProcessor(cfg.Separator.PostProcessWorkers, log)

	taskRepo := repository.NewTaskRepository()
	separationUC := usecase.NewSeparationUseCase(taskRepo, fileStorage, strategy, postProcessor, nil, log)

	dispatcher := queue.NewLocalDispatcher(separationUC, log)
	defer func() {
		_ = dispatcher.Stop(context.Background())
	}()

	taskUC := usecase.NewTaskUseCase(taskRepo, fileStorage, dispatcher, nil, cfg.Storage.MaxUploadSize, log)

	task, err := taskUC.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := separationUC.Wait(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("interrupted while waiting for task: %w", err)
	}

	return taskUC.GetByID(ctx, task.ID)
}
