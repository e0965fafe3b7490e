package journey

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
)

type ChecklistStatus string

const (
	ChecklistPending   ChecklistStatus = "PENDING"
	ChecklistSubmitted ChecklistStatus = "SUBMITTED"
	ChecklistApproved  ChecklistStatus = "APPROVED"
)

// DefaultChecklist is created for every locked choice.
var DefaultChecklist = []string{"SOP", "LOR", "IELTS", "TOEFL"}

func ParseChecklistStatus(raw string) (ChecklistStatus, error) {
	switch s := ChecklistStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ChecklistPending, ChecklistSubmitted, ChecklistApproved:
		return s, nil
	default:
		return "", apierr.Validation("invalid checklist status %q (want PENDING, SUBMITTED or APPROVED)", raw)
	}
}

// Progressed reports whether s counts as progress on the application.
func (s ChecklistStatus) Progressed() bool {
	return s == ChecklistSubmitted || s == ChecklistApproved
}

type ChecklistItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	LockedChoiceID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_checklist_lock_item,priority:1" json:"locked_choice_id"`
	ItemName       string          `gorm:"not null;uniqueIndex:idx_checklist_lock_item,priority:2" json:"item_name"`
	Status         ChecklistStatus `gorm:"not null" json:"status"`
	Notes          string          `gorm:"column:notes" json:"notes"`
	SubmittedAt    *time.Time      `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ApprovedAt     *time.Time      `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (ChecklistItem) TableName() string { return "checklist_item" }

// ApplyStatus sets the status and stamps the set-once timestamps.
func (it *ChecklistItem) ApplyStatus(status ChecklistStatus, now time.Time) {
	it.Status = status
	switch status {
	case ChecklistSubmitted:
		if it.SubmittedAt == nil {
			it.SubmittedAt = &now
		}
	case ChecklistApproved:
		if it.ApprovedAt == nil {
			it.ApprovedAt = &now
		}
	}
}

// Progress summarizes a checklist.
type Progress struct {
	Total                int `json:"total"`
	Pending              int `json:"pending"`
	Submitted            int `json:"submitted"`
	Approved             int `json:"approved"`
	CompletionPercentage int `json:"completion_percentage"`
}

func ComputeProgress(items []*ChecklistItem) Progress {
	p := Progress{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case ChecklistPending:
			p.Pending++
		case ChecklistSubmitted:
			p.Submitted++
		case ChecklistApproved:
			p.Approved++
		}
	}
	if p.Total > 0 {
		p.CompletionPercentage = p.Approved * 100 / p.Total
	}
	return p
}
