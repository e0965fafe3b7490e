package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "HTTP_ADDR", "PORT", "LOG_MODE", "CORS_ALLOWED_ORIGINS", "DB_DRIVER", "DB_DSN",
		"JWT_SECRET_KEY", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "LLM_PROVIDER", "MAIL_PROVIDER",
		"RATE_LIMIT_BACKEND", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_SECONDS", "SEED_CATALOGUE", "METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, LLMProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, MailProviderLog, cfg.MailProvider)
	assert.Equal(t, RateLimitMemory, cfg.RateLimitBackend)
	assert.Equal(t, 3, cfg.RateLimitMax)
	assert.Equal(t, 120*time.Second, cfg.RateLimitWindow)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.SeedCatalogue)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("ACCESS_TOKEN_TTL", "900")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("MAIL_PROVIDER", "ses")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com,")
	t.Setenv("SEED_CATALOGUE", "true")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file::memory:", cfg.DB.DSN)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, LLMProviderGemini, cfg.LLMProvider)
	assert.Equal(t, MailProviderSES, cfg.MailProvider)
	assert.Equal(t, RateLimitRedis, cfg.RateLimitBackend)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SeedCatalogue)

	t.Setenv("HTTP_ADDR", "127.0.0.1:7000")
	cfg, err = LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTPAddr)
}

func TestLoadConfigFileIsOverriddenByEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "unibridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mail_provider: sendgrid\nrate_limit_max: 5\nhttp_addr: \":7777\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RATE_LIMIT_MAX", "4")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, MailProviderSendGrid, cfg.MailProvider)
	assert.Equal(t, 4, cfg.RateLimitMax)
	assert.Equal(t, ":7777", cfg.HTTPAddr)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = LoadConfig(logger.NewNop())
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownProviders(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("RATE_LIMIT_BACKEND", "memcached")

	_, err := LoadConfig(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported LLM_PROVIDER "claude"`)
	assert.Contains(t, err.Error(), `unsupported RATE_LIMIT_BACKEND "memcached"`)
}

func TestLoadEnvFileKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("UNIBRIDGE_TEST_FROM_FILE=file\nUNIBRIDGE_TEST_PRESET=file\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("UNIBRIDGE_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("UNIBRIDGE_TEST_FROM_FILE") })

	LoadEnvFile(logger.NewNop())
	assert.Equal(t, "file", os.Getenv("UNIBRIDGE_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("UNIBRIDGE_TEST_PRESET"))
}
