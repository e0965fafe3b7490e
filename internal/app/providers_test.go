package app

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/clients/redis"
	"github.com/yungbote/unibridge-backend/internal/platform/gcp"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
	"github.com/yungbote/unibridge-backend/internal/services"
)

func TestResolveMailer(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	m, err := resolveMailer(ctx, log, Config{MailProvider: MailProviderLog})
	require.NoError(t, err)
	assert.IsType(t, &services.LogMailer{}, m)

	t.Setenv("SENDGRID_API_KEY", "")
	_, err = resolveMailer(ctx, log, Config{MailProvider: MailProviderSendGrid})
	require.Error(t, err)
	assert.Equal(t, ProviderBootstrapErrorConnectFailed, BootstrapErrorCode(err))
	assert.Contains(t, err.Error(), "SENDGRID_API_KEY")

	t.Setenv("SENDGRID_API_KEY", "SG.test")
	m, err = resolveMailer(ctx, log, Config{MailProvider: MailProviderSendGrid})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = resolveMailer(ctx, log, Config{MailProvider: "pigeon"})
	var be *ProviderBootstrapError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, ProviderBootstrapErrorInvalidMode, be.Code)
	assert.Equal(t, "mail", be.Provider)
}

func TestResolveTextGeneratorNeedsKey(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Setenv("OPENAI_API_KEY", "")
	_, err := resolveTextGenerator(ctx, log, Config{LLMProvider: LLMProviderOpenAI})
	assert.Equal(t, ProviderBootstrapErrorConnectFailed, BootstrapErrorCode(err))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	gen, err := resolveTextGenerator(ctx, log, Config{LLMProvider: LLMProviderOpenAI})
	require.NoError(t, err)
	assert.NotNil(t, gen)

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err = resolveTextGenerator(ctx, log, Config{LLMProvider: LLMProviderGemini})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestResolveLimiterMemory(t *testing.T) {
	c := &Clients{}
	require.NoError(t, c.resolveLimiter(context.Background(), logger.NewNop(), Config{
		RateLimitBackend: RateLimitMemory, RateLimitMax: 2, RateLimitWindow: ratelimit.DefaultWindow,
	}))
	window, ok := c.Limiter.(*ratelimit.SlidingWindow)
	require.True(t, ok)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, err := window.Allow(ctx, "u")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := window.Allow(ctx, "u")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Nil(t, c.Redis)
}

func TestResolveLimiterRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	t.Setenv("REDIS_ADDR", mr.Addr())

	c := &Clients{}
	t.Cleanup(c.Close)
	require.NoError(t, c.resolveLimiter(context.Background(), logger.NewNop(), Config{
		RateLimitBackend: RateLimitRedis, RateLimitMax: 3, RateLimitWindow: ratelimit.DefaultWindow,
	}))
	require.NotNil(t, c.Redis)
	assert.IsType(t, &redis.SlidingWindowLimiter{}, c.Limiter)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := c.Limiter.Allow(ctx, "shared-user")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := c.Limiter.Allow(ctx, "shared-user")
	require.NoError(t, err)
	assert.False(t, allowed)

	t.Setenv("REDIS_ADDR", "")
	other := &Clients{}
	err = other.resolveLimiter(ctx, logger.NewNop(), Config{RateLimitBackend: RateLimitRedis})
	assert.Equal(t, ProviderBootstrapErrorConnectFailed, BootstrapErrorCode(err))
}

func TestResolveDocumentStoreFallsBackToDisk(t *testing.T) {
	root := t.TempDir()
	t.Setenv("DOCUMENTS_GCS_BUCKET_NAME", "")
	t.Setenv("DOCUMENTS_LOCAL_DIR", root)
	t.Setenv("DOCUMENTS_LOCAL_BASE_URL", "/files/")

	c := &Clients{}
	require.NoError(t, c.resolveDocumentStore(context.Background(), logger.NewNop()))
	require.NotNil(t, c.Store)
	assert.Equal(t, root, c.FilesRoot)
	assert.Equal(t, "/files", c.FilesPath)
	assert.Equal(t, "/files/documents/a.pdf", c.Store.PublicURL("documents/a.pdf"))
}

func TestResolveDocumentStoreBucketFailure(t *testing.T) {
	t.Setenv("DOCUMENTS_GCS_BUCKET_NAME", "unibridge-docs")
	prev := newBucketService
	t.Cleanup(func() { newBucketService = prev })
	var got gcp.BucketConfig
	newBucketService = func(_ context.Context, _ *logger.Logger, cfg gcp.BucketConfig) (*gcp.BucketService, error) {
		got = cfg
		return nil, errors.New("dial: connection refused")
	}

	c := &Clients{}
	err := c.resolveDocumentStore(context.Background(), logger.NewNop())
	require.Error(t, err)
	assert.Equal(t, "unibridge-docs", got.Bucket)
	assert.Equal(t, ProviderBootstrapErrorConnectFailed, BootstrapErrorCode(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, c.FilesRoot)
}
