package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when GEMINI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is not set")

type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	PushgatewayURL     string
	PushgatewayEnabled bool

	OutputDir  string
	BriefFile  string
	LogFile    string
	TraceFile  string
	ExportXLSX bool

	Port        string
	DatabaseURL string
	RedisURL    string
	Environment string

	Events EventConfig
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		PushgatewayURL:     getEnv("PUSHGATEWAY_URL", "localhost:9091"),
		PushgatewayEnabled: getEnvBool("PUSHGATEWAY_ENABLED", true),

		OutputDir:  getEnv("OUTPUT_DIR", "."),
		BriefFile:  getEnv("BRIEF_FILE", "content_brief.md"),
		LogFile:    getEnv("LOG_FILE", "quiz_generator.log"),
		TraceFile:  os.Getenv("TRACE_FILE"),
		ExportXLSX: getEnvBool("EXPORT_XLSX", false),

		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Environment: getEnv("ENVIRONMENT", "development"),

		Events: LoadEventConfig(),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
