package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type EmailOTPRepo interface {
	Create(dbc dbctx.Context, otp *types.EmailOTP) error
	// Latest returns the most recent code issued to the user, consumed or not.
	Latest(dbc dbctx.Context, userID uuid.UUID) (*types.EmailOTP, error)
	MarkConsumed(dbc dbctx.Context, otpID uuid.UUID, at time.Time) error
	DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error
}

type emailOTPRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmailOTPRepo(db *gorm.DB, baseLog *logger.Logger) EmailOTPRepo {
	return &emailOTPRepo{db: db, log: baseLog.With("repo", "EmailOTPRepo")}
}

func (r *emailOTPRepo) Create(dbc dbctx.Context, otp *types.EmailOTP) error {
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(otp).Error
}

func (r *emailOTPRepo) Latest(dbc dbctx.Context, userID uuid.UUID) (*types.EmailOTP, error) {
	var rows []*types.EmailOTP
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *emailOTPRepo) MarkConsumed(dbc dbctx.Context, otpID uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).
		Model(&types.EmailOTP{}).
		Where("id = ? AND consumed_at IS NULL", otpID).
		Update("consumed_at", at).Error
}

func (r *emailOTPRepo) DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("user_id = ?", userID).
		Delete(&types.EmailOTP{}).Error
}
