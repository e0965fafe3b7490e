package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Profile       services.ProfileService
	CandidatePool services.CandidatePoolService
	Shortlist     services.ShortlistService
	Checklist     services.ChecklistService
	Task          services.TaskService
	Document      services.DocumentService
	SOP           services.SOPService
	Counsellor    services.CounsellorService
	Dashboard     services.DashboardService
}

// wireServices builds the services. The auth service doubles as the token issuer for
// every service that moves the journey stage.
func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c *Clients) Services {
	log.Info("Wiring services...")
	auth := services.NewAuthService(db, log, r.User, r.UserToken, r.EmailOTP, c.Mailer,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return Services{
		Auth:    auth,
		Profile: services.NewProfileService(db, log, r.User, r.Profile, r.Task, auth),
		CandidatePool: services.NewCandidatePoolService(db, log, r.User, r.Profile, r.University, r.Shortlist,
			r.ExclusionMemory, services.NewCandidateProvider(c.Generator), c.Limiter),
		Shortlist: services.NewShortlistService(db, log, r.User, r.University, r.Shortlist, r.LockedChoice, r.Checklist, auth),
		Checklist: services.NewChecklistService(db, log, r.User, r.LockedChoice, r.Checklist, auth),
		Task:      services.NewTaskService(db, log, r.User, r.Task),
		Document:  services.NewDocumentService(db, log, r.User, r.Document, r.Checklist, c.Store),
		SOP:       services.NewSOPService(db, log, r.User, r.Profile, r.SOPDraft, c.Generator, c.Limiter),
		Counsellor: services.NewCounsellorService(db, log, r.User, r.Profile, r.Shortlist, r.University,
			r.LockedChoice, r.CounsellorMessage, c.Generator, c.Limiter),
		Dashboard: services.NewDashboardService(log, r.User, r.Profile, r.Shortlist, r.LockedChoice, r.Checklist, r.Task),
	}
}
