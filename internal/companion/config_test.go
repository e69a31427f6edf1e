package companion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	want := DefaultConfig()
	cfg.LLM.APIKey, cfg.PIN, cfg.Feed.Auth = "", "", ""
	assert.Equal(t, want, cfg)
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("PELIOSCOPE_FIREBASE_AUTH", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Storage = BackendSQLite
	cfg.Care.HungerWindow = Duration{45 * time.Minute}
	cfg.Feed.Source = FeedFirebase
	cfg.Feed.URL = "https://example.firebaseio.com"
	cfg.Feed.Auth = "secret"
	cfg.LLM.APIKey = "key"
	require.NoError(t, SaveConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "45m0s")
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "apiKey")

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, got.Storage)
	assert.Equal(t, 45*time.Minute, got.Thresholds().HungerWindow)
	assert.Equal(t, FeedFirebase, got.Feed.Source)
	assert.Empty(t, got.Feed.Auth)
	assert.Empty(t, got.LLM.APIKey)
}

func TestConfigEnvOverrides(t *testing.T) {
	env := map[string]string{
		"API_KEY":                  "fallback",
		"PELIOSCOPE_PIN":           "1234",
		"PELIOSCOPE_FIREBASE_AUTH": "token",
	}
	cfg := DefaultConfig()
	cfg.applyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "fallback", cfg.LLM.APIKey)
	assert.Equal(t, "1234", cfg.PIN)
	assert.Equal(t, "token", cfg.Feed.Auth)

	env["GEMINI_API_KEY"] = "primary"
	cfg.applyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "primary", cfg.LLM.APIKey)
}

func TestBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[care]\ndirtyAfter = 'soon'\n"), 0o600))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid duration")
}

func TestGeminiSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "k"
	g := cfg.Gemini()
	assert.Equal(t, "k", g.APIKey)
	assert.Equal(t, cfg.Story.Voice, g.Voice)
	assert.Equal(t, cfg.LLM.BreakerFailures, g.Breaker.MaxFailures)
}
