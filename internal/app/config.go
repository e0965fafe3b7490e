package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"

	MailProviderSendGrid = "sendgrid"
	MailProviderSES      = "ses"
	MailProviderLog      = "log"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type Config struct {
	HTTPAddr        string
	LogMode         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	DB db.Config

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LLMProvider      string
	MailProvider     string
	RateLimitBackend string
	RateLimitMax     int
	RateLimitWindow  time.Duration

	SeedCatalogue bool
	// MetricsAddr moves /metrics to its own listener. Empty keeps it on the API router.
	MetricsAddr string
}

// LoadEnvFile loads ENV_FILE (default .env) into the process environment. Variables that
// are already set win.
func LoadEnvFile(log *logger.Logger) {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if log != nil {
			log.Warn("Failed to load env file", "path", path, "error", err)
		}
		return
	}
	if log != nil {
		log.Info("Loaded env file", "path", path)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_mode", "development")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("shutdown_timeout_seconds", 15)

	v.SetDefault("db_driver", db.DriverPostgres)
	v.SetDefault("db_dsn", "")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_name", "unibridge")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("jwt_secret_key", "defaultsecret")
	v.SetDefault("access_token_ttl", 3600)
	v.SetDefault("refresh_token_ttl", 86400)

	v.SetDefault("llm_provider", LLMProviderOpenAI)
	v.SetDefault("mail_provider", MailProviderLog)
	v.SetDefault("rate_limit_backend", RateLimitMemory)
	v.SetDefault("rate_limit_max", ratelimit.DefaultLimit)
	v.SetDefault("rate_limit_window_seconds", int(ratelimit.DefaultWindow/time.Second))

	v.SetDefault("seed_catalogue", false)
	v.SetDefault("metrics_addr", "")
	return v
}

// LoadConfig reads the optional config.yaml, then lets environment variables override it.
func LoadConfig(log *logger.Logger) (Config, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else if log != nil {
		log.Info("Loaded config file", "path", v.ConfigFileUsed())
	}

	cfg := Config{
		HTTPAddr:        httpAddr(v),
		LogMode:         v.GetString("log_mode"),
		AllowedOrigins:  splitList(v.GetString("cors_allowed_origins")),
		ShutdownTimeout: time.Duration(v.GetInt("shutdown_timeout_seconds")) * time.Second,
		DB: db.Config{
			Driver:   v.GetString("db_driver"),
			DSN:      v.GetString("db_dsn"),
			Host:     v.GetString("postgres_host"),
			Port:     v.GetString("postgres_port"),
			User:     v.GetString("postgres_user"),
			Password: v.GetString("postgres_password"),
			Name:     v.GetString("postgres_name"),
			SSLMode:  v.GetString("postgres_sslmode"),
		},
		JWTSecretKey:     v.GetString("jwt_secret_key"),
		AccessTokenTTL:   time.Duration(v.GetInt("access_token_ttl")) * time.Second,
		RefreshTokenTTL:  time.Duration(v.GetInt("refresh_token_ttl")) * time.Second,
		LLMProvider:      strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
		MailProvider:     strings.ToLower(strings.TrimSpace(v.GetString("mail_provider"))),
		RateLimitBackend: strings.ToLower(strings.TrimSpace(v.GetString("rate_limit_backend"))),
		RateLimitMax:     v.GetInt("rate_limit_max"),
		RateLimitWindow:  time.Duration(v.GetInt("rate_limit_window_seconds")) * time.Second,
		SeedCatalogue:    v.GetBool("seed_catalogue"),
		MetricsAddr:      strings.TrimSpace(v.GetString("metrics_addr")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecretKey == "defaultsecret" && log != nil {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	return cfg, nil
}

// httpAddr prefers HTTP_ADDR, then PORT for platforms that only hand out a port number.
func httpAddr(v *viper.Viper) string {
	if addr := strings.TrimSpace(v.GetString("http_addr")); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(v.GetString("port")); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return ":8080"
}

func (c Config) Validate() error {
	var problems []string
	switch c.LLMProvider {
	case LLMProviderOpenAI, LLMProviderGemini:
	default:
		problems = append(problems, fmt.Sprintf("unsupported LLM_PROVIDER %q", c.LLMProvider))
	}
	switch c.MailProvider {
	case MailProviderSendGrid, MailProviderSES, MailProviderLog:
	default:
		problems = append(problems, fmt.Sprintf("unsupported MAIL_PROVIDER %q", c.MailProvider))
	}
	switch c.RateLimitBackend {
	case RateLimitMemory, RateLimitRedis:
	default:
		problems = append(problems, fmt.Sprintf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimitBackend))
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		problems = append(problems, "JWT_SECRET_KEY must not be empty")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		problems = append(problems, "token TTLs must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
