package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAnalysisDepth  = 15
	DefaultEvalTimeout    = 10 * time.Second
	DefaultStartupTimeout = 5 * time.Second
	MaxAnalysisDepth      = 40
	DefaultEngineSessions = 2
)

// ServerConfig holds all configuration values loaded from environment variables.
type ServerConfig struct {
	ServerHost        string
	ServerPort        string
	RedisURL          string
	PostgresURL       string
	BasicAuthUsername string
	BasicAuthPassword string
	Token             string
	Prefork           bool
	AnalysisDepth     int

	// EngineSessions is the maximum number of engine processes running at the same time
	EngineSessions int
}

// LoadServerConfig loads configuration from environment variables.
func LoadServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerHost:        getEnvMust("CHESSREVIEW_SERVER_HOST"),
		ServerPort:        getEnvMust("CHESSREVIEW_SERVER_PORT"),
		RedisURL:          getEnvMust("CHESSREVIEW_REDIS_URL"),
		PostgresURL:       getEnvMust("CHESSREVIEW_POSTGRES_URL"),
		BasicAuthUsername: getEnvMust("CHESSREVIEW_BASIC_AUTH_USER"),
		BasicAuthPassword: getEnvMust("CHESSREVIEW_BASIC_AUTH_PASS"),
		Token:             getEnvMust("CHESSREVIEW_TOKEN"),
		Prefork:           getEnvMustBool("CHESSREVIEW_PREFORK"),
		AnalysisDepth:     getEnvInt("CHESSREVIEW_ANALYSIS_DEPTH", DefaultAnalysisDepth),
		EngineSessions:    getEnvInt("CHESSREVIEW_ENGINE_SESSIONS", DefaultEngineSessions),
	}
}

// EngineConfig describes how to launch and drive a UCI engine.
type EngineConfig struct {
	EnginePath     string
	StartupTimeout time.Duration
	EvalTimeout    time.Duration
	Threads        int
	HashMB         int
}

func LoadEngineConfig() *EngineConfig {
	return &EngineConfig{
		EnginePath:     getEnvMust("CHESSREVIEW_ENGINE_PATH"),
		StartupTimeout: getEnvDuration("CHESSREVIEW_ENGINE_STARTUP_TIMEOUT", DefaultStartupTimeout),
		EvalTimeout:    getEnvDuration("CHESSREVIEW_ENGINE_EVAL_TIMEOUT", DefaultEvalTimeout),
		Threads:        getEnvInt("CHESSREVIEW_ENGINE_THREADS", 1),
		HashMB:         getEnvInt("CHESSREVIEW_ENGINE_HASH_MB", 16),
	}
}

// LoadDotEnv reads a .env file from the working directory if there is one.
// Variables that are already set keep their value.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

// getEnvMust either returns the environment variable or logs a fatal error if it is not set.
func getEnvMust(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Environment variable is not set", "key", key)
		os.Exit(1)
	}
	return value
}

func getEnvMustBool(key string) bool {
	value := getEnvMust(key)

	if value != "true" && value != "false" {
		slog.Error("Cannot load environment variable, it must be \"true\" or \"false\"", "key", key, "value", value)
		os.Exit(1)
	}

	return value == "true"
}

// getEnvInt returns fallback when key is unset and exits when it is not a non-negative integer.
func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		slog.Error("Cannot load environment variable, it must be a non-negative integer", "key", key, "value", value)
		os.Exit(1)
	}

	return parsed
}

// getEnvDuration accepts Go duration strings such as "750ms" or "10s".
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		slog.Error("Cannot load environment variable, it must be a positive duration", "key", key, "value", value)
		os.Exit(1)
	}

	return parsed
}
