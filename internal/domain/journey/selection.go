package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxShortlist bounds the live shortlist entries per user.
const MaxShortlist = 7

type ShortlistEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shortlist_user_university,priority:1" json:"user_id"`
	UniversityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shortlist_user_university,priority:2" json:"university_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (ShortlistEntry) TableName() string { return "shortlist_entry" }

// Snapshot is the value copy of a university taken when it is locked.
type Snapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	Degree     string `json:"degree"`
	Field      string `json:"field"`
	TuitionMin int    `json:"tuition_min"`
	TuitionMax int    `json:"tuition_max"`
	Difficulty string `json:"difficulty"`
}

// LockedChoice is the single committed university of a user.
type LockedChoice struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	UniversityID uuid.UUID                    `gorm:"type:uuid;not null" json:"university_id"`
	Snapshot     datatypes.JSONType[Snapshot] `gorm:"column:snapshot;not null" json:"snapshot"`
	LockedAt     time.Time                    `gorm:"not null" json:"locked_at"`
}

func (LockedChoice) TableName() string { return "locked_choice" }

// ExclusionMemory holds the normalized names surfaced by the last refresh.
type ExclusionMemory struct {
	UserID    uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"user_id"`
	Names     datatypes.JSONSlice[string] `gorm:"column:names" json:"names"`
	UpdatedAt time.Time                   `gorm:"not null" json:"updated_at"`
}

func (ExclusionMemory) TableName() string { return "exclusion_memory" }

func (m *ExclusionMemory) Contains(nameKey string) bool {
	if m == nil {
		return false
	}
	for _, n := range m.Names {
		if n == nameKey {
			return true
		}
	}
	return false
}
