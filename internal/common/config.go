package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once at startup
// and injected; nothing mutates it afterwards.
type Config struct {
	Vision   VisionConfig
	Pipeline PipelineConfig
	Batch    BatchConfig
}

// VisionConfig holds settings for the external vision capability.
type VisionConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PipelineConfig holds document handling thresholds and the retry policy.
type PipelineConfig struct {
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	MaxPages        int           `yaml:"max_pages"`
	RasterDPI       int           `yaml:"raster_dpi"`
	MinDimension    int           `yaml:"min_dimension"`
	MaxDimension    int           `yaml:"max_dimension"`
	ContrastBoost   float64       `yaml:"contrast_boost"`
	SharpenSigma    float64       `yaml:"sharpen_sigma"`
	MaxAttempts     int           `yaml:"max_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	DefaultCurrency string        `yaml:"default_currency"`
}

// BatchConfig holds worker pool settings for the batch CLI.
type BatchConfig struct {
	Workers    int           `yaml:"workers"`
	QueueSize  int           `yaml:"queue_size"`
	JobTimeout time.Duration `yaml:"job_timeout"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Vision: VisionConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Pipeline: PipelineConfig{
			MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", 20<<20),
			MaxPages:        getEnvAsInt("MAX_PAGES", 5),
			RasterDPI:       getEnvAsInt("RASTER_DPI", 200),
			MinDimension:    getEnvAsInt("MIN_DIMENSION", 800),
			MaxDimension:    getEnvAsInt("MAX_DIMENSION", 2500),
			ContrastBoost:   getEnvAsFloat64("CONTRAST_BOOST", 30),
			SharpenSigma:    getEnvAsFloat64("SHARPEN_SIGMA", 1.5),
			MaxAttempts:     getEnvAsInt("MAX_ATTEMPTS", 3),
			RetryDelay:      getEnvAsDuration("RETRY_DELAY", time.Second),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "EUR"),
		},
		Batch: BatchConfig{
			Workers:    getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize:  getEnvAsInt("BATCH_QUEUE_SIZE", 256),
			JobTimeout: getEnvAsDuration("BATCH_JOB_TIMEOUT", 3*time.Minute),
		},
	}
}

// ApplyYAML overlays settings from a YAML file onto the config. A missing
// file is not an error; the env-derived defaults stand.
func (c *Config) ApplyYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var overlay struct {
		Vision   VisionConfig   `yaml:"vision"`
		Pipeline PipelineConfig `yaml:"pipeline"`
		Batch    BatchConfig    `yaml:"batch"`
	}
	overlay.Vision = c.Vision
	overlay.Pipeline = c.Pipeline
	overlay.Batch = c.Batch
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.Vision = overlay.Vision
	c.Pipeline = overlay.Pipeline
	c.Batch = overlay.Batch
	return nil
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Pipeline.MaxPages <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_PAGES must be positive", ErrInvalidInput)
	}
	if c.Pipeline.MinDimension >= c.Pipeline.MaxDimension {
		return NewAppError("CONFIG_ERROR", "MIN_DIMENSION must be below MAX_DIMENSION", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
