package app

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/http"
	"github.com/yungbote/unibridge-backend/internal/observability"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  *Clients
	Metrics  *observability.Metrics
	Server   *http.Server

	database     *db.Service
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE, before any config is read.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects and migrates the schema.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	database, err := db.NewService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(database.DB()); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return database, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelCfg := observability.OtelConfigFromEnv()
	otelShutdown := observability.InitOTel(ctx, log, otelCfg)
	metrics := observability.Init(log)

	database, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := database.DB()
	metrics.RegisterDBStats(log, theDB, "unibridge")

	if cfg.SeedCatalogue {
		n, err := db.SeedCatalogue(theDB)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		log.Info("University catalogue seeded", "inserted", n)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)

	serviceName := ""
	if otelCfg.Enabled {
		serviceName = otelCfg.ServiceName
	}
	server := http.NewServer(cfg.HTTPAddr, routerConfig(log, cfg, serviceset, clients, metrics, serviceName))

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		Server:       server,
		database:     database,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled or a listener fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run()
	})

	metricsSrv := a.Metrics.NewServer(a.Cfg.MetricsAddr)
	if metricsSrv != nil {
		g.Go(func() error {
			a.Log.Info("Metrics server listening", "addr", a.Cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	if window, ok := a.Clients.Limiter.(*ratelimit.SlidingWindow); ok {
		done := window.StartJanitor(gctx, 0)
		g.Go(func() error {
			<-done
			return nil
		})
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis)
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down", "timeout", a.Cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
