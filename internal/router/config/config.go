package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`

	StorageBackend  string `mapstructure:"STORAGE_BACKEND"`
	SequenceBackend string `mapstructure:"SEQUENCE_BACKEND"`
	SequencePrefix  string `mapstructure:"SEQUENCE_PREFIX"`
	SequencePadding int    `mapstructure:"SEQUENCE_PADDING"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ExportTimeout  time.Duration `mapstructure:"EXPORT_TIMEOUT"`
}

var configKeys = []string{
	"SERVER_ADDRESS", "POSTGRES_CONN", "POSTGRES_USERNAME", "POSTGRES_PASSWORD", "POSTGRES_HOST",
	"POSTGRES_PORT", "POSTGRES_DATABASE", "STORAGE_BACKEND", "SEQUENCE_BACKEND", "SEQUENCE_PREFIX",
	"SEQUENCE_PADDING", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL", "LOG_FORMAT",
	"REQUEST_TIMEOUT", "EXPORT_TIMEOUT",
}

// LoadConfig загружает конфигурацию из файла app.env и переменных окружения.
// Переменные окружения имеют приоритет, отсутствие файла не считается ошибкой.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("STORAGE_BACKEND", BackendPostgres)
	v.SetDefault("SEQUENCE_BACKEND", BackendPostgres)
	v.SetDefault("SEQUENCE_PREFIX", "TND")
	v.SetDefault("SEQUENCE_PADDING", 5)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("EXPORT_TIMEOUT", 30*time.Second)

	v.AutomaticEnv()
	for _, key := range configKeys {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	err = cfg.Validate()
	return
}

// Validate проверяет согласованность выбранных бэкендов.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.StorageBackend)
	}

	switch c.SequenceBackend {
	case BackendPostgres:
		if c.StorageBackend == BackendMemory {
			return fmt.Errorf("sequence backend %q requires postgres storage", c.SequenceBackend)
		}
	case BackendMemory:
		if c.StorageBackend != BackendMemory {
			return fmt.Errorf("sequence backend %q requires memory storage", c.SequenceBackend)
		}
	case BackendRedis:
	default:
		return fmt.Errorf("unsupported sequence backend %q", c.SequenceBackend)
	}

	if c.SequencePadding < 0 {
		return fmt.Errorf("sequence padding must be non-negative")
	}
	if c.RequestTimeout <= 0 || c.ExportTimeout <= 0 {
		return fmt.Errorf("request and export timeouts must be positive")
	}
	return nil
}
