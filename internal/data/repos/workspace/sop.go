package workspace

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type SOPDraftRepo interface {
	Create(dbc dbctx.Context, draft *types.SOPDraft) error
	GetForUser(dbc dbctx.Context, userID, draftID uuid.UUID) (*types.SOPDraft, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SOPDraft, error)
	Save(dbc dbctx.Context, draft *types.SOPDraft) error
	Delete(dbc dbctx.Context, userID, draftID uuid.UUID) (bool, error)
}

type sopDraftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSOPDraftRepo(db *gorm.DB, baseLog *logger.Logger) SOPDraftRepo {
	return &sopDraftRepo{db: db, log: baseLog.With("repo", "SOPDraftRepo")}
}

func (r *sopDraftRepo) Create(dbc dbctx.Context, draft *types.SOPDraft) error {
	now := time.Now().UTC()
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	draft.CreatedAt = now
	draft.UpdatedAt = now
	return dbc.DB(r.db).Create(draft).Error
}

func (r *sopDraftRepo) GetForUser(dbc dbctx.Context, userID, draftID uuid.UUID) (*types.SOPDraft, error) {
	var rows []*types.SOPDraft
	if err := dbc.DB(r.db).Where("id = ? AND user_id = ?", draftID, userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *sopDraftRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SOPDraft, error) {
	var results []*types.SOPDraft
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sopDraftRepo) Save(dbc dbctx.Context, draft *types.SOPDraft) error {
	draft.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).Save(draft).Error
}

func (r *sopDraftRepo) Delete(dbc dbctx.Context, userID, draftID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ? AND user_id = ?", draftID, userID).Delete(&types.SOPDraft{})
	return res.RowsAffected > 0, res.Error
}
