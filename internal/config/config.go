package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port           string
	AllowedOrigins []string
	SecureCookies  bool

	// Data
	DataDir     string
	CatalogPath string
	ImageDir    string

	// Artifacts
	OutputDir      string
	ArtifactFormat string
	SlipTitle      string

	SessionTTL time.Duration
	LogLevel   slog.Level
}

// LoadEnv reads an optional .env file into the environment. Variables
// already set win.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func LoadConfig() *Config {
	dataDir := getEnv("DATA_DIR", ".")
	return &Config{
		Port:           getEnv("PORT", ""),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		SecureCookies:  getEnvAsBool("SECURE_COOKIES", false),

		DataDir:     dataDir,
		CatalogPath: getEnv("CATALOG_PATH", filepath.Join(dataDir, "catalog_krisshop.json")),
		ImageDir:    getEnv("IMAGE_DIR", filepath.Join(dataDir, "images")),

		OutputDir:      getEnv("OUTPUT_DIR", "out"),
		ArtifactFormat: getEnv("ARTIFACT_FORMAT", "png"),
		SlipTitle:      getEnv("SLIP_TITLE", "Combined eSGV"),

		SessionTTL: getEnvAsDuration("SESSION_TTL", "8h"),
		LogLevel:   getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(getEnv(key, ""))); err == nil {
		return lvl
	}
	return defaultValue
}
