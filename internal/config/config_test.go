package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
	"TEXT_MODEL", "IMAGE_MODEL", "MAX_TOKENS", "TEMPERATURE", "RECIPE_LANGUAGE",
	"UPSTREAM_TIMEOUT", "IMAGE_FETCH_TIMEOUT", "IMAGE_MAX_WIDTH", "PORT",
	"CORS_ORIGINS", "DATABASE_URL", "LOG_LEVEL", "SHUTDOWN_TIMEOUT",
}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "5080", cfg.Port)
	assert.Equal(t, 5000, cfg.MaxTokens)
	assert.InDelta(t, 0.8, cfg.Temperature, 1e-6)
	assert.Equal(t, "Spanish", cfg.RecipeLanguage)
	assert.Equal(t, 45*time.Second, cfg.UpstreamTimeout)
	assert.Zero(t, cfg.ImageMaxWidth)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeJSON(t, `{"gemini_api_key":"from-file","DATABASE_URL":"postgres://file","port":"9000","llm_provider":"gemini"}`)
	t.Setenv("PORT", "7000")
	t.Setenv("UPSTREAM_TIMEOUT", "30")
	t.Setenv("IMAGE_FETCH_TIMEOUT", "1m")
	t.Setenv("CORS_ORIGINS", "http://localhost:8081, https://app.example.com")
	t.Setenv("IMAGE_MAX_WIDTH", "800")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, "postgres://file", cfg.DatabaseURL)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, time.Minute, cfg.ImageFetchTimeout)
	assert.Equal(t, []string{"http://localhost:8081", "https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, uint(800), cfg.ImageMaxWidth)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ProviderKeyRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	assert.ErrorContains(t, err, "OpenAIAPIKey")

	t.Setenv("LLM_PROVIDER", "gemini")
	_, err = Load("")
	assert.ErrorContains(t, err, "GeminiAPIKey")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"unknown provider", "LLM_PROVIDER", "anthropic", "LLMProvider"},
		{"non-numeric tokens", "MAX_TOKENS", "lots", "MAX_TOKENS"},
		{"bad duration", "UPSTREAM_TIMEOUT", "soon", "UPSTREAM_TIMEOUT"},
		{"bad port", "PORT", "http", "Port"},
		{"bad base url", "OPENAI_BASE_URL", "not a url", "OpenAIBaseURL"},
		{"temperature out of range", "TEMPERATURE", "3.5", "Temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OPENAI_API_KEY", "sk-test")
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeJSON(t, `{"port":`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to unmarshal")
}
