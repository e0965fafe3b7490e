package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/unibridge-backend/internal/clients/redis"
	"github.com/yungbote/unibridge-backend/internal/platform/gcp"
	"github.com/yungbote/unibridge-backend/internal/platform/gemini"
	"github.com/yungbote/unibridge-backend/internal/platform/localmedia"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/openai"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
	"github.com/yungbote/unibridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/unibridge-backend/internal/platform/ses"
	"github.com/yungbote/unibridge-backend/internal/services"
)

var (
	newRedisClient   = redis.NewClient
	newBucketService = gcp.NewBucketService
)

type ProviderBootstrapErrorCode string

const (
	ProviderBootstrapErrorInvalidMode   ProviderBootstrapErrorCode = "invalid_mode"
	ProviderBootstrapErrorConnectFailed ProviderBootstrapErrorCode = "connect_failed"
)

// ProviderBootstrapError reports which external dependency could not be brought up.
type ProviderBootstrapError struct {
	Provider string
	Mode     string
	Code     ProviderBootstrapErrorCode
	Cause    error
}

func (e *ProviderBootstrapError) Error() string {
	if e == nil {
		return "provider bootstrap failed"
	}
	return fmt.Sprintf("%s bootstrap failed (code=%s mode=%q): %v", e.Provider, e.Code, e.Mode, e.Cause)
}

func (e *ProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func bootstrapFailed(log *logger.Logger, provider, mode string, code ProviderBootstrapErrorCode, cause error) error {
	err := &ProviderBootstrapError{Provider: provider, Mode: mode, Code: code, Cause: cause}
	log.Error("Provider bootstrap failed", "provider", provider, "mode", mode, "error_code", code, "error", cause)
	return err
}

// BootstrapErrorCode extracts the classification from err, defaulting to connect_failed.
func BootstrapErrorCode(err error) ProviderBootstrapErrorCode {
	var be *ProviderBootstrapError
	if errors.As(err, &be) && be.Code != "" {
		return be.Code
	}
	return ProviderBootstrapErrorConnectFailed
}

// Clients holds the external dependencies the services are built on.
type Clients struct {
	Generator services.TextGenerator
	Mailer    services.Mailer
	Store     services.DocumentStore
	Limiter   ratelimit.Limiter
	Redis     *goredis.Client

	// FilesRoot and FilesPath are set when documents live on local disk.
	FilesRoot string
	FilesPath string

	closers []io.Closer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	gen, err := resolveTextGenerator(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	c.Generator = gen

	mailer, err := resolveMailer(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	c.Mailer = mailer

	if err := c.resolveDocumentStore(ctx, log); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.resolveLimiter(ctx, log, cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func resolveTextGenerator(ctx context.Context, log *logger.Logger, cfg Config) (services.TextGenerator, error) {
	log.Info("Selecting text generation provider", "mode", cfg.LLMProvider)
	switch cfg.LLMProvider {
	case LLMProviderOpenAI:
		client, err := openai.New(log, openai.ConfigFromEnv())
		if err != nil {
			return nil, bootstrapFailed(log, "llm", cfg.LLMProvider, ProviderBootstrapErrorConnectFailed, err)
		}
		return client, nil
	case LLMProviderGemini:
		client, err := gemini.New(ctx, log, gemini.ConfigFromEnv())
		if err != nil {
			return nil, bootstrapFailed(log, "llm", cfg.LLMProvider, ProviderBootstrapErrorConnectFailed, err)
		}
		return client, nil
	default:
		return nil, bootstrapFailed(log, "llm", cfg.LLMProvider, ProviderBootstrapErrorInvalidMode,
			fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider))
	}
}

func resolveMailer(ctx context.Context, log *logger.Logger, cfg Config) (services.Mailer, error) {
	log.Info("Selecting mail provider", "mode", cfg.MailProvider)
	switch cfg.MailProvider {
	case MailProviderSendGrid:
		client, err := sendgrid.New(log, sendgrid.ConfigFromEnv())
		if err != nil {
			return nil, bootstrapFailed(log, "mail", cfg.MailProvider, ProviderBootstrapErrorConnectFailed, err)
		}
		return services.NewSendGridMailer(client), nil
	case MailProviderSES:
		client, err := ses.New(ctx, log, ses.ConfigFromEnv())
		if err != nil {
			return nil, bootstrapFailed(log, "mail", cfg.MailProvider, ProviderBootstrapErrorConnectFailed, err)
		}
		return services.NewSESMailer(client), nil
	case MailProviderLog:
		log.Warn("MAIL_PROVIDER=log: verification codes are written to the log")
		return services.NewLogMailer(log), nil
	default:
		return nil, bootstrapFailed(log, "mail", cfg.MailProvider, ProviderBootstrapErrorInvalidMode,
			fmt.Errorf("unsupported MAIL_PROVIDER %q", cfg.MailProvider))
	}
}

// resolveDocumentStore uses the GCS bucket when one is configured and local disk otherwise.
func (c *Clients) resolveDocumentStore(ctx context.Context, log *logger.Logger) error {
	bucketCfg := gcp.BucketConfigFromEnv()
	if strings.TrimSpace(bucketCfg.Bucket) != "" {
		log.Info("Selecting document storage", "mode", "gcs", "bucket", bucketCfg.Bucket, "emulator_host", bucketCfg.EmulatorHost)
		bucket, err := newBucketService(ctx, log, bucketCfg)
		if err != nil {
			return bootstrapFailed(log, "document_storage", "gcs", ProviderBootstrapErrorConnectFailed, err)
		}
		c.Store = bucket
		c.closers = append(c.closers, bucket)
		return nil
	}

	diskCfg := localmedia.ConfigFromEnv()
	log.Info("Selecting document storage", "mode", "local", "root", diskCfg.Root)
	disk, err := localmedia.NewDiskStore(log, diskCfg)
	if err != nil {
		return bootstrapFailed(log, "document_storage", "local", ProviderBootstrapErrorConnectFailed, err)
	}
	c.Store = disk
	c.FilesRoot = disk.Root()
	c.FilesPath = diskCfg.BaseURL
	return nil
}

func (c *Clients) resolveLimiter(ctx context.Context, log *logger.Logger, cfg Config) error {
	log.Info("Selecting rate limit backend", "mode", cfg.RateLimitBackend, "limit", cfg.RateLimitMax, "window", cfg.RateLimitWindow)
	switch cfg.RateLimitBackend {
	case RateLimitMemory:
		c.Limiter = ratelimit.NewSlidingWindow(cfg.RateLimitMax, cfg.RateLimitWindow, nil)
		return nil
	case RateLimitRedis:
		rdb, err := newRedisClient(ctx, log, redis.ConfigFromEnv())
		if err != nil {
			return bootstrapFailed(log, "rate_limit", cfg.RateLimitBackend, ProviderBootstrapErrorConnectFailed, err)
		}
		c.Redis = rdb
		c.closers = append(c.closers, rdb)
		c.Limiter = redis.NewSlidingWindowLimiter(log, rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
		return nil
	default:
		return bootstrapFailed(log, "rate_limit", cfg.RateLimitBackend, ProviderBootstrapErrorInvalidMode,
			fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend))
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
}
