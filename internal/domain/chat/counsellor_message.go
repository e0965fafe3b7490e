package chat

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryWindow is how many prior messages are replayed to the provider.
const HistoryWindow = 10

type CounsellorMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_counsellor_user_conv,priority:1" json:"user_id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_counsellor_user_conv,priority:2" json:"conversation_id"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

func (CounsellorMessage) TableName() string { return "counsellor_message" }
