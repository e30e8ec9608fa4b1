package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Extract  ExtractConfig
	Worker   WorkerConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // postgres or sqlite
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string // tesseract (CLI) or gosseract (library, needs the ocr build tag)
	TesseractPath string
	PdfToTextPath string
	PdfToPPMPath  string
	Language      string
	DPI           int
	TessdataDir   string
	FetchTimeout  time.Duration
}

// ExtractConfig tunes the price-list extraction core.
type ExtractConfig struct {
	VocabularyPath  string
	MinLineLength   int
	SimilarityFloor float64
}

// WorkerConfig holds job queue configuration
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	PollInterval   time.Duration
	BatchSize      int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Engine:        getEnv("OCR_ENGINE", "tesseract"),
			TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
			PdfToTextPath: getEnv("PDFTOTEXT_PATH", "pdftotext"),
			PdfToPPMPath:  getEnv("PDFTOPPM_PATH", "pdftoppm"),
			Language:      getEnv("OCR_LANG", "spa"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			FetchTimeout:  getEnvAsDuration("FETCH_TIMEOUT", 60*time.Second),
		},
		Extract: ExtractConfig{
			VocabularyPath:  getEnv("VOCABULARY_PATH", ""),
			MinLineLength:   getEnvAsInt("MIN_LINE_LENGTH", 2),
			SimilarityFloor: getEnvAsFloat("SIMILARITY_FLOOR", 0.70),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("WORKERS", 2),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
			PollInterval:   getEnvAsDuration("POLL_INTERVAL", 10*time.Second),
			BatchSize:      getEnvAsInt("BATCH_SIZE", 50),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	switch c.OCR.Engine {
	case "tesseract", "gosseract":
	default:
		return NewAppError("CONFIG_ERROR", "OCR_ENGINE must be tesseract or gosseract", ErrInvalidInput)
	}
	if c.Extract.MinLineLength < 1 {
		return NewAppError("CONFIG_ERROR", "MIN_LINE_LENGTH must be positive", ErrInvalidInput)
	}
	if c.Extract.SimilarityFloor <= 0 || c.Extract.SimilarityFloor > 1 {
		return NewAppError("CONFIG_ERROR", "SIMILARITY_FLOOR must be in (0, 1]", ErrInvalidInput)
	}
	if c.Worker.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be at least 1", ErrInvalidInput)
	}
	return nil
}
