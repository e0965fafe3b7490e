package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type ExclusionMemoryRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.ExclusionMemory, error)
	Replace(dbc dbctx.Context, userID uuid.UUID, names []string) error
}

type exclusionMemoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExclusionMemoryRepo(db *gorm.DB, baseLog *logger.Logger) ExclusionMemoryRepo {
	return &exclusionMemoryRepo{db: db, log: baseLog.With("repo", "ExclusionMemoryRepo")}
}

func (r *exclusionMemoryRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*types.ExclusionMemory, error) {
	var rows []*types.ExclusionMemory
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *exclusionMemoryRepo) Replace(dbc dbctx.Context, userID uuid.UUID, names []string) error {
	if names == nil {
		names = []string{}
	}
	row := &types.ExclusionMemory{
		UserID:    userID,
		Names:     names,
		UpdatedAt: time.Now().UTC(),
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"names", "updated_at"}),
	}).Create(row).Error
}
