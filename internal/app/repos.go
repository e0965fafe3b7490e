package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type Repos struct {
	User              repos.UserRepo
	UserToken         repos.UserTokenRepo
	EmailOTP          repos.EmailOTPRepo
	Profile           repos.ProfileRepo
	University        repos.UniversityRepo
	Shortlist         repos.ShortlistRepo
	LockedChoice      repos.LockedChoiceRepo
	Checklist         repos.ChecklistRepo
	ExclusionMemory   repos.ExclusionMemoryRepo
	Task              repos.TaskRepo
	Document          repos.DocumentRepo
	SOPDraft          repos.SOPDraftRepo
	CounsellorMessage repos.CounsellorMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		UserToken:         repos.NewUserTokenRepo(db, log),
		EmailOTP:          repos.NewEmailOTPRepo(db, log),
		Profile:           repos.NewProfileRepo(db, log),
		University:        repos.NewUniversityRepo(db, log),
		Shortlist:         repos.NewShortlistRepo(db, log),
		LockedChoice:      repos.NewLockedChoiceRepo(db, log),
		Checklist:         repos.NewChecklistRepo(db, log),
		ExclusionMemory:   repos.NewExclusionMemoryRepo(db, log),
		Task:              repos.NewTaskRepo(db, log),
		Document:          repos.NewDocumentRepo(db, log),
		SOPDraft:          repos.NewSOPDraftRepo(db, log),
		CounsellorMessage: repos.NewCounsellorMessageRepo(db, log),
	}
}
