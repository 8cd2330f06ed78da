package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_DIR", "CATALOG_PATH", "IMAGE_DIR", "OUTPUT_DIR",
		"ARTIFACT_FORMAT", "SESSION_TTL", "ALLOWED_ORIGINS", "LOG_LEVEL", "SECURE_COOKIES", "SLIP_TITLE"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Empty(t, cfg.Port)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "catalog_krisshop.json", cfg.CatalogPath)
	assert.Equal(t, "images", cfg.ImageDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "png", cfg.ArtifactFormat)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.SecureCookies)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_DIR", "/srv/sgv")
	t.Setenv("CATALOG_PATH", "")
	t.Setenv("IMAGE_DIR", "")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ARTIFACT_FORMAT", "json")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, filepath.Join("/srv/sgv", "catalog_krisshop.json"), cfg.CatalogPath)
	assert.Equal(t, filepath.Join("/srv/sgv", "images"), cfg.ImageDir)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.ArtifactFormat)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SLIP_TITLE=From File\n"), 0o644))
	t.Setenv("SLIP_TITLE", "")
	os.Unsetenv("SLIP_TITLE")

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "From File", os.Getenv("SLIP_TITLE"))
	os.Unsetenv("SLIP_TITLE")
}
