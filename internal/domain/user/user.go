package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/domain/journey"
)

type User struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string        `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string        `gorm:"not null;column:password" json:"-"`
	FirstName string        `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string        `gorm:"not null;column:last_name" json:"last_name"`
	Stage     journey.Stage `gorm:"not null;default:ONBOARDING;column:stage" json:"stage"`
	IsActive  bool          `gorm:"not null;default:false;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
