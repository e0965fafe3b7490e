package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/domain/workspace"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type TaskInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.Task, error)
	Create(ctx context.Context, userID uuid.UUID, in TaskInput) (*types.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, in TaskInput) (*types.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type taskService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
	tasks repos.TaskRepo
}

func NewTaskService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, tasks repos.TaskRepo) TaskService {
	return &taskService{
		db:    db,
		log:   log.With("service", "TaskService"),
		users: users,
		tasks: tasks,
	}
}

var taskPriorities = map[string]string{"high": "High", "medium": "Medium", "low": "Low"}

func parsePriority(raw string) (string, error) {
	p, ok := taskPriorities[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", apierr.Validation("invalid priority %q (want High, Medium or Low)", raw)
	}
	return p, nil
}

// applyTaskInput copies the set fields of in onto t.
func applyTaskInput(t *types.Task, in TaskInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apierr.Validation("title is required")
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return err
		}
		t.Priority = p
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		t.Category = strings.TrimSpace(*in.Category)
	}
	if in.Status != nil {
		st, err := workspace.ParseTaskStatus(*in.Status)
		if err != nil {
			return err
		}
		t.Status = st
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		t.DueDate = &due
	}
	return nil
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID) ([]*types.Task, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "list tasks", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*types.Task{}
	}
	return tasks, nil
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, in TaskInput) (*types.Task, error) {
	if in.Title == nil {
		return nil, apierr.Validation("title is required")
	}
	task := &types.Task{
		ID:       uuid.New(),
		UserID:   userID,
		Priority: "Medium",
		Category: "General",
		Status:   workspace.TaskTodo,
	}
	if err := applyTaskInput(task, in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "create task", journey.AfterOnboarding); err != nil {
			return err
		}
		if err := s.tasks.Create(dbc, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, in TaskInput) (*types.Task, error) {
	var task *types.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "update task", journey.AfterOnboarding); err != nil {
			return err
		}
		var err error
		task, err = s.tasks.GetForUser(dbc, userID, taskID)
		if err != nil {
			return fmt.Errorf("load task: %w", err)
		}
		if task == nil {
			return apierr.NotFound("task not found")
		}
		if err := applyTaskInput(task, in); err != nil {
			return err
		}
		if err := s.tasks.Save(dbc, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "delete task", journey.AfterOnboarding); err != nil {
			return err
		}
		removed, err := s.tasks.Delete(dbc, userID, taskID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if !removed {
			return apierr.NotFound("task not found")
		}
		return nil
	})
}
