package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type CounsellorMessageRepo interface {
	Create(dbc dbctx.Context, msgs []*types.CounsellorMessage) error
	// Recent returns up to limit messages of the conversation, oldest first.
	Recent(dbc dbctx.Context, userID, conversationID uuid.UUID, limit int) ([]*types.CounsellorMessage, error)
	// LatestConversation returns the conversation of the user's newest message, or uuid.Nil.
	LatestConversation(dbc dbctx.Context, userID uuid.UUID) (uuid.UUID, error)
}

type counsellorMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCounsellorMessageRepo(db *gorm.DB, baseLog *logger.Logger) CounsellorMessageRepo {
	return &counsellorMessageRepo{db: db, log: baseLog.With("repo", "CounsellorMessageRepo")}
}

func (r *counsellorMessageRepo) Create(dbc dbctx.Context, msgs []*types.CounsellorMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i, m := range msgs {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			// Keep insertion order stable within one batch.
			m.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}
	}
	return dbc.DB(r.db).Create(&msgs).Error
}

func (r *counsellorMessageRepo) Recent(dbc dbctx.Context, userID, conversationID uuid.UUID, limit int) ([]*types.CounsellorMessage, error) {
	var rows []*types.CounsellorMessage
	q := dbc.DB(r.db).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (r *counsellorMessageRepo) LatestConversation(dbc dbctx.Context, userID uuid.UUID) (uuid.UUID, error) {
	var rows []*types.CounsellorMessage
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return uuid.Nil, err
	}
	if len(rows) == 0 {
		return uuid.Nil, nil
	}
	return rows[0].ConversationID, nil
}
