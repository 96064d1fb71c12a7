package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Separator SeparatorConfig
	Queue     QueueConfig
	Redis     RedisConfig
	S3        S3Config
	Log       LogConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig локальные каталоги загрузок и результатов
type StorageConfig struct {
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	OutputDir     string `env:"OUTPUT_DIR" envDefault:"outputs"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"52428800"` // 50 MB
}

// SeparatorConfig настройки основного движка разделения (spleeter)
type SeparatorConfig struct {
	SpleeterEnabled bool          `env:"SEPARATOR_SPLEETER_ENABLED" envDefault:"true"`
	PythonBin       string        `env:"SEPARATOR_PYTHON_BIN" envDefault:"python3"`
	ProbeTTL        time.Duration `env:"SEPARATOR_PROBE_TTL" envDefault:"5m"`
	MaxConcurrent   int           `env:"SEPARATOR_MAX_CONCURRENT" envDefault:"2"`
	// Параллелизм постобработки внутри одной задачи
	PostProcessWorkers int `env:"POSTPROCESS_WORKERS" envDefault:"4"`
}

const (
	QueueBackendLocal = "local"
	QueueBackendRedis = "redis"
)

// QueueConfig способ запуска фонового исполнения
type QueueConfig struct {
	// local или redis
	Backend     string `env:"QUEUE_BACKEND" envDefault:"local"`
	Concurrency int    `env:"QUEUE_CONCURRENCY" envDefault:"2"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// S3Config зеркало готовых артефактов в S3/MinIO
type S3Config struct {
	Enabled       bool          `env:"S3_ENABLED" envDefault:"false"`
	Endpoint      string        `env:"S3_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey     string        `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey     string        `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	Bucket        string        `env:"S3_BUCKET" envDefault:"stems"`
	UseSSL        bool          `env:"S3_USE_SSL" envDefault:"false"`
	PresignExpiry time.Duration `env:"S3_PRESIGN_EXPIRY" envDefault:"1h"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// json или console
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Queue.Backend {
	case QueueBackendLocal, QueueBackendRedis:
	default:
		return fmt.Errorf("invalid QUEUE_BACKEND %q: expected %q or %q", c.Queue.Backend, QueueBackendLocal, QueueBackendRedis)
	}
	if c.Storage.OutputDir == "" || c.Storage.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR and OUTPUT_DIR must be set")
	}
	return nil
}
