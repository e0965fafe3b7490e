package workspace

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/workspace"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, task *types.Task) error
	GetForUser(dbc dbctx.Context, userID, taskID uuid.UUID) (*types.Task, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error)
	CountOpen(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Save(dbc dbctx.Context, task *types.Task) error
	Delete(dbc dbctx.Context, userID, taskID uuid.UUID) (bool, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(dbc dbctx.Context, task *types.Task) error {
	now := time.Now().UTC()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return dbc.DB(r.db).Create(task).Error
}

func (r *taskRepo) GetForUser(dbc dbctx.Context, userID, taskID uuid.UUID) (*types.Task, error) {
	var rows []*types.Task
	if err := dbc.DB(r.db).Where("id = ? AND user_id = ?", taskID, userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *taskRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error) {
	var results []*types.Task
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) CountOpen(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.Task{}).
		Where("user_id = ? AND status IN ?", userID, []workspace.TaskStatus{workspace.TaskTodo, workspace.TaskInProgress}).
		Count(&count).Error
	return count, err
}

func (r *taskRepo) Save(dbc dbctx.Context, task *types.Task) error {
	task.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).Save(task).Error
}

func (r *taskRepo) Delete(dbc dbctx.Context, userID, taskID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ? AND user_id = ?", taskID, userID).Delete(&types.Task{})
	return res.RowsAffected > 0, res.Error
}
