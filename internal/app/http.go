package app

import (
	"github.com/yungbote/unibridge-backend/internal/http"
	httpH "github.com/yungbote/unibridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/unibridge-backend/internal/http/middleware"
	"github.com/yungbote/unibridge-backend/internal/observability"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

// routerConfig wires handlers and middleware around the services. /metrics stays on the
// API router unless a dedicated listener is configured.
func routerConfig(log *logger.Logger, cfg Config, svc Services, c *Clients, metrics *observability.Metrics, serviceName string) http.RouterConfig {
	log.Info("Wiring handlers...")
	rc := http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		FilesRoot:      c.FilesRoot,
		FilesPath:      c.FilesPath,

		AuthHandler:       httpH.NewAuthHandler(log, svc.Auth),
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, svc.Auth),
		ProfileHandler:    httpH.NewProfileHandler(log, svc.Profile),
		UniversityHandler: httpH.NewUniversityHandler(log, svc.CandidatePool),
		ShortlistHandler:  httpH.NewShortlistHandler(log, svc.Shortlist),
		ChecklistHandler:  httpH.NewChecklistHandler(log, svc.Checklist),
		WorkspaceHandler:  httpH.NewWorkspaceHandler(log, svc.Task, svc.Document, svc.SOP),
		CounsellorHandler: httpH.NewCounsellorHandler(log, svc.Counsellor),
		DashboardHandler:  httpH.NewDashboardHandler(log, svc.Dashboard),
		HealthHandler:     httpH.NewHealthHandler(),
	}
	rc.Metrics = metrics
	rc.MetricsExternal = cfg.MetricsAddr != ""
	return rc
}
