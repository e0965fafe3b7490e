package journey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type LockedChoiceRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.LockedChoice, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Create(dbc dbctx.Context, lc *types.LockedChoice) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type lockedChoiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLockedChoiceRepo(db *gorm.DB, baseLog *logger.Logger) LockedChoiceRepo {
	return &lockedChoiceRepo{db: db, log: baseLog.With("repo", "LockedChoiceRepo")}
}

func (r *lockedChoiceRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.LockedChoice, error) {
	var rows []*types.LockedChoice
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *lockedChoiceRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.LockedChoice{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *lockedChoiceRepo) Create(dbc dbctx.Context, lc *types.LockedChoice) error {
	if lc.ID == uuid.Nil {
		lc.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(lc).Error
}

func (r *lockedChoiceRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.LockedChoice{}).Error
}
