package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.Provider)
	assert.Equal(t, 60.0, cfg.MinConfidence)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test123")
	t.Setenv("MIN_CONFIDENCE", "75.5")
	t.Setenv("STORAGE_BACKEND", "azure")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test123", cfg.OpenAIAPIKey)
	assert.Equal(t, 75.5, cfg.MinConfidence)
	assert.Equal(t, "azure", cfg.StorageBackend)
}

func TestLoadBadFloatFallsBack(t *testing.T) {
	t.Setenv("MIN_CONFIDENCE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 60.0, cfg.MinConfidence)
}
