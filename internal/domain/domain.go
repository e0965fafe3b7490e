package domain

import (
	"github.com/yungbote/unibridge-backend/internal/domain/auth"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
	"github.com/yungbote/unibridge-backend/internal/domain/chat"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/domain/user"
	"github.com/yungbote/unibridge-backend/internal/domain/workspace"
)

type (
	User    = user.User
	Profile = user.Profile

	UserToken = auth.UserToken
	EmailOTP  = auth.EmailOTP

	University = catalog.University
	Difficulty = catalog.Difficulty

	Stage           = journey.Stage
	ShortlistEntry  = journey.ShortlistEntry
	LockedChoice    = journey.LockedChoice
	Snapshot        = journey.Snapshot
	ChecklistItem   = journey.ChecklistItem
	ChecklistStatus = journey.ChecklistStatus
	ExclusionMemory = journey.ExclusionMemory

	Task                = workspace.Task
	TaskStatus          = workspace.TaskStatus
	ApplicationDocument = workspace.ApplicationDocument
	SOPDraft            = workspace.SOPDraft

	CounsellorMessage = chat.CounsellorMessage
)

// AllModels lists every persisted entity, in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&UserToken{},
		&EmailOTP{},
		&Profile{},
		&University{},
		&ShortlistEntry{},
		&LockedChoice{},
		&ChecklistItem{},
		&ExclusionMemory{},
		&Task{},
		&ApplicationDocument{},
		&SOPDraft{},
		&CounsellorMessage{},
	}
}
