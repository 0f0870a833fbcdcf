package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Http.Port)
	assert.Equal(t, 30*time.Second, cfg.Http.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Http.AllowedOrigins)
	assert.EqualValues(t, 64<<10, cfg.Http.MaxBodyBytes)
	assert.Equal(t, "decision_tree", cfg.Model.Type)
	assert.Equal(t, "en", cfg.Display.Locale)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Zero(t, cfg.Cache.Size)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  timeout: 5s
  allowed_origins: ["https://bank.example"]
model:
  type: logistic_regression
  path: /srv/models/lr.json
  watch: true
cache:
  size: 256
display:
  locale: de
log:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.Timeout)
	assert.Equal(t, []string{"https://bank.example"}, cfg.Http.AllowedOrigins)
	assert.Equal(t, "logistic_regression", cfg.Model.Type)
	assert.Equal(t, "/srv/models/lr.json", cfg.Model.Path)
	assert.True(t, cfg.Model.Watch)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, "de", cfg.Display.Locale)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 9090\n")
	t.Setenv("BANKPRED_HTTP_PORT", "7070")
	t.Setenv("BANKPRED_MODEL_PATH", "/tmp/model.json")
	t.Setenv("BANKPRED_CACHE_SIZE", "16")
	t.Setenv("BANKPRED_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Http.Port)
	assert.Equal(t, "/tmp/model.json", cfg.Model.Path)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Http.AllowedOrigins)
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "HTTP_TIMEOUT", "MODEL_WATCH", "CACHE_SIZE"} {
		env := map[string]string{envPrefix + key: "not-a-value"}
		err := applyEnv(&Config{}, func(k string) string { return env[k] })
		assert.Error(t, err, key)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"port":       "http:\n  port: 70000\n",
		"cache":      "cache:\n  size: -1\n",
		"log level":  "log:\n  level: verbose\n",
		"log format": "log:\n  format: xml\n",
		"yaml":       "http: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
