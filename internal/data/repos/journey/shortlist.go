package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type ShortlistRepo interface {
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Exists(dbc dbctx.Context, userID, universityID uuid.UUID) (bool, error)
	Create(dbc dbctx.Context, entry *types.ShortlistEntry) error
	// Delete removes the pair and reports whether a row existed.
	Delete(dbc dbctx.Context, userID, universityID uuid.UUID) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ShortlistEntry, error)
	UniversityIDs(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
}

type shortlistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShortlistRepo(db *gorm.DB, baseLog *logger.Logger) ShortlistRepo {
	repoLog := baseLog.With("repo", "ShortlistRepo")
	return &shortlistRepo{db: db, log: repoLog}
}

func (r *shortlistRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.ShortlistEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *shortlistRepo) Exists(dbc dbctx.Context, userID, universityID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.ShortlistEntry{}).
		Where("user_id = ? AND university_id = ?", userID, universityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shortlistRepo) Create(dbc dbctx.Context, entry *types.ShortlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(entry).Error
}

func (r *shortlistRepo) Delete(dbc dbctx.Context, userID, universityID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("user_id = ? AND university_id = ?", userID, universityID).
		Delete(&types.ShortlistEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *shortlistRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ShortlistEntry, error) {
	var results []*types.ShortlistEntry
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shortlistRepo) UniversityIDs(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.ShortlistEntry{}).
		Where("user_id = ?", userID).
		Pluck("university_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
