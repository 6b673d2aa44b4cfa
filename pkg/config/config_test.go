package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, ProviderOpenRouter, cfg.LLM.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 1536, cfg.Embedding.Dimensions)
	assert.False(t, cfg.Embedding.RefreshOnChange)
	assert.Equal(t, 10, cfg.Match.DefaultLimit)
	assert.InDelta(t, 0.5, cfg.Match.DefaultMinScore, 1e-9)
	assert.False(t, cfg.Match.FuzzySkills)
	assert.InDelta(t, 0.7, cfg.Explanation.Temperature, 1e-6)
	assert.Equal(t, 150, cfg.Explanation.MaxTokens)
	assert.Equal(t, time.Hour, cfg.JWTTTL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	keyFile := filepath.Join(t.TempDir(), "gemini")
	require.NoError(t, os.WriteFile(keyFile, []byte("file-key\n"), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY_FILE", keyFile)
	t.Setenv("OPENROUTER_API_KEY", "inline-key")
	t.Setenv("MATCH_CONCURRENCY", "3")
	t.Setenv("MATCH_FUZZY_SKILLS", "true")
	t.Setenv("EMBEDDING_REFRESH_ON_CHANGE", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TTL", "30m")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "file-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "inline-key", cfg.LLM.OpenRouter.APIKey)
	assert.Equal(t, 3, cfg.Match.Concurrency)
	assert.True(t, cfg.Match.FuzzySkills)
	assert.True(t, cfg.Embedding.RefreshOnChange)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")

	v := viper.New()
	v.Set("port", "7070")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("LLM_PROVIDER", "ollama")
	_, err := Load(viper.New())
	require.ErrorContains(t, err, "unsupported LLM_PROVIDER")

	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY_FILE", filepath.Join(t.TempDir(), "missing"))
	_, err = Load(viper.New())
	require.ErrorContains(t, err, "reading openrouter api key")
}
