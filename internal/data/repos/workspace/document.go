package workspace

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, doc *types.ApplicationDocument) error
	GetForUser(dbc dbctx.Context, userID, docID uuid.UUID) (*types.ApplicationDocument, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ApplicationDocument, error)
	Delete(dbc dbctx.Context, userID, docID uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Create(dbc dbctx.Context, doc *types.ApplicationDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(doc).Error
}

func (r *documentRepo) GetForUser(dbc dbctx.Context, userID, docID uuid.UUID) (*types.ApplicationDocument, error) {
	var rows []*types.ApplicationDocument
	if err := dbc.DB(r.db).Where("id = ? AND user_id = ?", docID, userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *documentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ApplicationDocument, error) {
	var results []*types.ApplicationDocument
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *documentRepo) Delete(dbc dbctx.Context, userID, docID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ? AND user_id = ?", docID, userID).Delete(&types.ApplicationDocument{}).Error
}
