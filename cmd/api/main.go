package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shakib522/Sound-Extractor/internal/adapter/http/handler"
	"github.com/shakib522/Sound-Extractor/internal/adapter/postprocess"
	"github.com/shakib522/Sound-Extractor/internal/adapter/queue"
	"github.com/shakib522/Sound-Extractor/internal/adapter/repository"
	"github.com/shakib522/Sound-Extractor/internal/adapter/separator"
	"github.com/shakib522/Sound-Extractor/internal/adapter/storage"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/shakib522/Sound-Extractor/internal/usecase"
	"github.com/shakib522/Sound-Extractor/pkg/logger"
	"go.uber.org/zap"

	apphttp "github.com/shakib522/Sound-Extractor/internal/adapter/http"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Инициализируем логгер
	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Info("Starting Sound Extractor API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("queue_backend", cfg.Queue.Backend),
	)

	// Контекст с отменой для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Локальные каталоги загрузок и результатов
	fileStorage, err := storage.NewLocalStorage(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to prepare storage directories", zap.Error(err))
	}

	// Зеркало артефактов в S3 (опционально)
	var mirror usecase.ArtifactMirror
	if cfg.S3.Enabled {
		s3Mirror, err := storage.NewS3Mirror(ctx, cfg.S3)
		if err != nil {
			log.Fatal("Failed to connect to S3", zap.Error(err))
		}
		mirror = s3Mirror
		log.Info("Connected to S3",
			zap.String("endpoint", cfg.S3.Endpoint),
			zap.String("bucket", cfg.S3.Bucket),
		)
	}

	// Бэкенды разделения
	var primary separator.Engine
	if cfg.Separator.SpleeterEnabled {
		spleeter, err := separator.NewSpleeterEngine(cfg.Separator, log)
		if err != nil {
			log.Fatal("Failed to create spleeter engine", zap.Error(err))
		}
		defer spleeter.Close()

		// Проверяем доступность spleeter
		if err := spleeter.CheckHealth(ctx); err != nil {
			log.Warn("Spleeter is not available, fallback separation will be used", zap.Error(err))
		} else {
			log.Info("Spleeter is available")
		}
		primary = spleeter
	}
	strategy := separator.NewStrategy(primary, separator.NewFallbackSeparator(log), log)
	postProcessor := postprocess.NewProcessor(cfg.Separator.PostProcessWorkers, log)

	// Инициализируем реестр задач
	taskRepo := repository.NewTaskRepository()

	// Инициализируем use cases
	separationUC := usecase.NewSeparationUseCase(taskRepo, fileStorage, strategy, postProcessor, mirror, log)
	lifecycleUC := usecase.NewLifecycleUseCase(taskRepo, fileStorage, mirror, log)

	// Очередь: горутины этого процесса или asynq поверх Redis
	var (
		taskQueue usecase.TaskQueue
		stopQueue func(context.Context)
	)
	switch cfg.Queue.Backend {
	case config.QueueBackendRedis:
		producer := queue.NewTaskProducer(cfg.Redis)
		defer producer.Close()

		consumer := queue.NewTaskConsumer(cfg.Redis, cfg.Queue, separationUC, log)
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start task consumer", zap.Error(err))
		}
		log.Info("Connected to Redis",
			zap.String("addr", cfg.Redis.Addr()),
		)

		taskQueue = producer
		stopQueue = func(context.Context) { consumer.Stop() }
	default:
		dispatcher := queue.NewLocalDispatcher(separationUC, log)
		taskQueue = dispatcher
		stopQueue = func(ctx context.Context) {
			if err := dispatcher.Stop(ctx); err != nil {
				log.Warn("Some tasks were still running at shutdown", zap.Error(err))
			}
		}
	}

	taskUC := usecase.NewTaskUseCase(taskRepo, fileStorage, taskQueue, mirror, cfg.Storage.MaxUploadSize, log)

	// Инициализируем handlers
	taskHandler := handler.NewTaskHandler(taskUC, lifecycleUC, cfg.Storage.MaxUploadSize, log)
	healthHandler := handler.NewHealthHandler()

	// Создаём роутер
	router := apphttp.NewRouter(taskHandler, healthHandler, log)

	// Создаём HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", cfg.Server.Addr()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopQueue(shutdownCtx)

	log.Info("Server stopped")
}
