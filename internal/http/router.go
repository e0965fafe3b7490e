package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/unibridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/unibridge-backend/internal/http/middleware"
	"github.com/yungbote/unibridge-backend/internal/observability"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	// MetricsExternal skips the /metrics route when a separate listener serves it.
	MetricsExternal bool
	// FilesRoot, when set, serves locally stored documents under FilesPath.
	FilesRoot       string
	FilesPath       string

	AuthHandler       *httpH.AuthHandler
	AuthMiddleware    *httpMW.AuthMiddleware
	ProfileHandler    *httpH.ProfileHandler
	UniversityHandler *httpH.UniversityHandler
	ShortlistHandler  *httpH.ShortlistHandler
	ChecklistHandler  *httpH.ChecklistHandler
	WorkspaceHandler  *httpH.WorkspaceHandler
	CounsellorHandler *httpH.CounsellorHandler
	DashboardHandler  *httpH.DashboardHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil && !cfg.MetricsExternal {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.FilesRoot != "" && cfg.FilesPath != "" {
		r.Static(cfg.FilesPath, cfg.FilesRoot)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/signup", cfg.AuthHandler.Signup)
			api.POST("/auth/verify-otp", cfg.AuthHandler.VerifyOTP)
			api.POST("/auth/resend-otp", cfg.AuthHandler.ResendOTP)
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/me", cfg.ProfileHandler.GetMe)
			protected.POST("/onboarding/complete", cfg.ProfileHandler.CompleteOnboarding)
			protected.GET("/profile", cfg.ProfileHandler.GetProfile)
			protected.PUT("/profile", cfg.ProfileHandler.UpdateProfile)
		}

		// Discovery
		if cfg.UniversityHandler != nil {
			protected.GET("/universities/discover", cfg.UniversityHandler.Discover)
			protected.POST("/universities/discover/refresh", cfg.UniversityHandler.Refresh)
		}

		// Shortlist and lock
		if cfg.ShortlistHandler != nil {
			protected.GET("/shortlist", cfg.ShortlistHandler.List)
			protected.POST("/shortlist/:university_id", cfg.ShortlistHandler.Add)
			protected.DELETE("/shortlist/:university_id", cfg.ShortlistHandler.Remove)
			protected.GET("/lock", cfg.ShortlistHandler.GetLock)
			protected.POST("/lock/:university_id", cfg.ShortlistHandler.Lock)
			protected.DELETE("/lock", cfg.ShortlistHandler.Unlock)
		}

		// Checklist
		if cfg.ChecklistHandler != nil {
			protected.POST("/checklist/initialize", cfg.ChecklistHandler.Initialize)
			protected.GET("/checklist", cfg.ChecklistHandler.List)
			protected.PUT("/checklist/:item_id", cfg.ChecklistHandler.Update)
			protected.POST("/checklist/complete/:item_name", cfg.ChecklistHandler.Complete)
		}

		// Tasks, documents, SOP drafts
		if cfg.WorkspaceHandler != nil {
			protected.GET("/tasks", cfg.WorkspaceHandler.ListTasks)
			protected.POST("/tasks", cfg.WorkspaceHandler.CreateTask)
			protected.PUT("/tasks/:id", cfg.WorkspaceHandler.UpdateTask)
			protected.DELETE("/tasks/:id", cfg.WorkspaceHandler.DeleteTask)

			protected.GET("/documents", cfg.WorkspaceHandler.ListDocuments)
			protected.POST("/documents", cfg.WorkspaceHandler.UploadDocument)
			protected.DELETE("/documents/:id", cfg.WorkspaceHandler.DeleteDocument)

			protected.GET("/sop", cfg.WorkspaceHandler.ListSOP)
			protected.POST("/sop", cfg.WorkspaceHandler.CreateSOP)
			protected.POST("/sop/generate", cfg.WorkspaceHandler.GenerateSOP)
			protected.PUT("/sop/:id", cfg.WorkspaceHandler.UpdateSOP)
			protected.DELETE("/sop/:id", cfg.WorkspaceHandler.DeleteSOP)
		}

		// Counsellor
		if cfg.CounsellorHandler != nil {
			protected.POST("/counsellor/chat", cfg.CounsellorHandler.Chat)
			protected.GET("/counsellor/history", cfg.CounsellorHandler.History)
			protected.POST("/counsellor/new", cfg.CounsellorHandler.NewConversation)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.Get)
		}
	}

	return r
}
