package repos

import (
	"github.com/yungbote/unibridge-backend/internal/data/repos/auth"
	"github.com/yungbote/unibridge-backend/internal/data/repos/catalog"
	"github.com/yungbote/unibridge-backend/internal/data/repos/chat"
	"github.com/yungbote/unibridge-backend/internal/data/repos/journey"
	"github.com/yungbote/unibridge-backend/internal/data/repos/user"
	"github.com/yungbote/unibridge-backend/internal/data/repos/workspace"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type ProfileRepo = user.ProfileRepo

type UserTokenRepo = auth.UserTokenRepo
type EmailOTPRepo = auth.EmailOTPRepo

type UniversityRepo = catalog.UniversityRepo

type ShortlistRepo = journey.ShortlistRepo
type LockedChoiceRepo = journey.LockedChoiceRepo
type ChecklistRepo = journey.ChecklistRepo
type ExclusionMemoryRepo = journey.ExclusionMemoryRepo

type TaskRepo = workspace.TaskRepo
type DocumentRepo = workspace.DocumentRepo
type SOPDraftRepo = workspace.SOPDraftRepo

type CounsellorMessageRepo = chat.CounsellorMessageRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewEmailOTPRepo(db *gorm.DB, baseLog *logger.Logger) EmailOTPRepo {
	return auth.NewEmailOTPRepo(db, baseLog)
}

func NewUniversityRepo(db *gorm.DB, baseLog *logger.Logger) UniversityRepo {
	return catalog.NewUniversityRepo(db, baseLog)
}

func NewShortlistRepo(db *gorm.DB, baseLog *logger.Logger) ShortlistRepo {
	return journey.NewShortlistRepo(db, baseLog)
}

func NewLockedChoiceRepo(db *gorm.DB, baseLog *logger.Logger) LockedChoiceRepo {
	return journey.NewLockedChoiceRepo(db, baseLog)
}

func NewChecklistRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistRepo {
	return journey.NewChecklistRepo(db, baseLog)
}

func NewExclusionMemoryRepo(db *gorm.DB, baseLog *logger.Logger) ExclusionMemoryRepo {
	return journey.NewExclusionMemoryRepo(db, baseLog)
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return workspace.NewTaskRepo(db, baseLog)
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return workspace.NewDocumentRepo(db, baseLog)
}

func NewSOPDraftRepo(db *gorm.DB, baseLog *logger.Logger) SOPDraftRepo {
	return workspace.NewSOPDraftRepo(db, baseLog)
}

func NewCounsellorMessageRepo(db *gorm.DB, baseLog *logger.Logger) CounsellorMessageRepo {
	return chat.NewCounsellorMessageRepo(db, baseLog)
}
