package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type ChecklistRepo interface {
	ListByLock(dbc dbctx.Context, lockedChoiceID uuid.UUID) ([]*types.ChecklistItem, error)
	CountByLock(dbc dbctx.Context, lockedChoiceID uuid.UUID) (int64, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CreateBatch(dbc dbctx.Context, items []*types.ChecklistItem) error
	// GetForUser returns the item only when it belongs to userID.
	GetForUser(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ChecklistItem, error)
	GetByName(dbc dbctx.Context, lockedChoiceID uuid.UUID, itemName string) (*types.ChecklistItem, error)
	Save(dbc dbctx.Context, item *types.ChecklistItem) error
	DeleteByLock(dbc dbctx.Context, lockedChoiceID uuid.UUID) (int64, error)
}

type checklistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChecklistRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistRepo {
	return &checklistRepo{db: db, log: baseLog.With("repo", "ChecklistRepo")}
}

func (r *checklistRepo) ListByLock(dbc dbctx.Context, lockedChoiceID uuid.UUID) ([]*types.ChecklistItem, error) {
	var results []*types.ChecklistItem
	if err := dbc.DB(r.db).
		Where("locked_choice_id = ?", lockedChoiceID).
		Order("created_at ASC, item_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *checklistRepo) CountByLock(dbc dbctx.Context, lockedChoiceID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.ChecklistItem{}).Where("locked_choice_id = ?", lockedChoiceID).Count(&count).Error
	return count, err
}

func (r *checklistRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.ChecklistItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *checklistRepo) CreateBatch(dbc dbctx.Context, items []*types.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
		it.UpdatedAt = now
	}
	return dbc.DB(r.db).Create(&items).Error
}

func (r *checklistRepo) GetForUser(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ChecklistItem, error) {
	var rows []*types.ChecklistItem
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", itemID, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *checklistRepo) GetByName(dbc dbctx.Context, lockedChoiceID uuid.UUID, itemName string) (*types.ChecklistItem, error) {
	var rows []*types.ChecklistItem
	if err := dbc.DB(r.db).
		Where("locked_choice_id = ? AND item_name = ?", lockedChoiceID, itemName).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *checklistRepo) Save(dbc dbctx.Context, item *types.ChecklistItem) error {
	item.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).Save(item).Error
}

func (r *checklistRepo) DeleteByLock(dbc dbctx.Context, lockedChoiceID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("locked_choice_id = ?", lockedChoiceID).Delete(&types.ChecklistItem{})
	return res.RowsAffected, res.Error
}
