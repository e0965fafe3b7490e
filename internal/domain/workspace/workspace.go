package workspace

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch s := TaskStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case TaskTodo, TaskInProgress, TaskDone:
		return s, nil
	case "":
		return TaskTodo, nil
	default:
		return "", apierr.Validation("invalid task status %q", raw)
	}
}

// Task is a free-form personal to-do, unrelated to the application checklist.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Priority    string     `gorm:"not null;default:Medium" json:"priority"`
	Category    string     `gorm:"not null;default:General" json:"category"`
	Status      TaskStatus `gorm:"not null;default:todo" json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

// Document upload limits.
const MaxDocumentBytes = 10 << 20

var AllowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

type ApplicationDocument struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ChecklistItemID *uuid.UUID `gorm:"type:uuid;index" json:"checklist_item_id,omitempty"`
	DocumentType    string     `gorm:"not null" json:"document_type"`
	FileName        string     `gorm:"not null" json:"file_name"`
	StorageKey      string     `gorm:"not null" json:"-"`
	URL             string     `gorm:"-" json:"url,omitempty"`
	FileSize        int64      `gorm:"not null" json:"file_size"`
	MimeType        string     `gorm:"not null" json:"mime_type"`
	Notes           string     `json:"notes"`
	IsFinal         bool       `gorm:"not null;default:false" json:"is_final"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
}

func (ApplicationDocument) TableName() string { return "application_document" }

type SOPDraft struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	WordCount int       `gorm:"not null;default:0" json:"word_count"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SOPDraft) TableName() string { return "sop_draft" }

// SetContent replaces the content, bumping the version when it actually changed.
func (d *SOPDraft) SetContent(content string) {
	if d.Version == 0 {
		d.Version = 1
	} else if content != d.Content {
		d.Version++
	}
	d.Content = content
	d.WordCount = len(strings.Fields(content))
}
