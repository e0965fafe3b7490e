package auth

import (
	"time"

	"github.com/google/uuid"
)

const (
	OTPLength         = 6
	OTPTTL            = 10 * time.Minute
	OTPResendInterval = 60 * time.Second
)

// EmailOTP is a one-time verification code sent at signup. Only its bcrypt hash is stored.
type EmailOTP struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	CodeHash   string     `gorm:"not null;column:code_hash" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"column:consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}

func (EmailOTP) TableName() string { return "email_otp" }

func (o *EmailOTP) Usable(now time.Time) bool {
	return o != nil && o.ConsumedAt == nil && now.Before(o.ExpiresAt)
}
