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
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type ChecklistView struct {
	University *journey.Snapshot      `json:"university"`
	Items      []*types.ChecklistItem `json:"items"`
	Progress   journey.Progress       `json:"progress"`
}

type InitializeResult struct {
	Items   []*types.ChecklistItem `json:"items"`
	Created bool                   `json:"created"`
}

type ChecklistItemResult struct {
	Item *types.ChecklistItem `json:"item"`
	*StageChange
}

type ChecklistService interface {
	Initialize(ctx context.Context, userID uuid.UUID) (*InitializeResult, error)
	List(ctx context.Context, userID uuid.UUID) (*ChecklistView, error)
	// SetStatus updates an item's status. notes is applied only when non-nil.
	SetStatus(ctx context.Context, userID, itemID uuid.UUID, status string, notes *string) (*ChecklistItemResult, error)
	// Complete marks the named item SUBMITTED, creating the checklist first if needed.
	Complete(ctx context.Context, userID uuid.UUID, itemName string) (*ChecklistItemResult, error)
}

type checklistService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	locks     repos.LockedChoiceRepo
	checklist repos.ChecklistRepo
	tokens    TokenIssuer
	now       func() time.Time
}

func NewChecklistService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	locks repos.LockedChoiceRepo,
	checklist repos.ChecklistRepo,
	tokens TokenIssuer,
) ChecklistService {
	return &checklistService{
		db:        db,
		log:       log.With("service", "ChecklistService"),
		users:     users,
		locks:     locks,
		checklist: checklist,
		tokens:    tokens,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *checklistService) Initialize(ctx context.Context, userID uuid.UUID) (*InitializeResult, error) {
	res := &InitializeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "initialize checklist", journey.HoldingLock); err != nil {
			return err
		}
		lock, err := s.requireLock(dbc, userID)
		if err != nil {
			return err
		}
		res.Items, res.Created, err = s.ensureItems(dbc, userID, lock.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *checklistService) requireLock(dbc dbctx.Context, userID uuid.UUID) (*types.LockedChoice, error) {
	lock, err := s.locks.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load lock: %w", err)
	}
	if lock == nil {
		return nil, apierr.NotFound("no locked university")
	}
	return lock, nil
}

// ensureItems creates the default items for lockID unless the checklist already has any.
func (s *checklistService) ensureItems(dbc dbctx.Context, userID, lockID uuid.UUID) ([]*types.ChecklistItem, bool, error) {
	n, err := s.checklist.CountByLock(dbc, lockID)
	if err != nil {
		return nil, false, fmt.Errorf("count checklist: %w", err)
	}
	if n > 0 {
		items, err := s.checklist.ListByLock(dbc, lockID)
		if err != nil {
			return nil, false, fmt.Errorf("list checklist: %w", err)
		}
		return items, false, nil
	}
	items := make([]*types.ChecklistItem, 0, len(journey.DefaultChecklist))
	for _, name := range journey.DefaultChecklist {
		items = append(items, &types.ChecklistItem{
			UserID:         userID,
			LockedChoiceID: lockID,
			ItemName:       name,
			Status:         journey.ChecklistPending,
		})
	}
	if err := s.checklist.CreateBatch(dbc, items); err != nil {
		return nil, false, fmt.Errorf("create checklist: %w", err)
	}
	return items, true, nil
}

func (s *checklistService) List(ctx context.Context, userID uuid.UUID) (*ChecklistView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "list checklist", journey.HoldingLock); err != nil {
		return nil, err
	}
	lock, err := s.requireLock(dbc, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.checklist.ListByLock(dbc, lock.ID)
	if err != nil {
		return nil, fmt.Errorf("list checklist: %w", err)
	}
	if items == nil {
		items = []*types.ChecklistItem{}
	}
	snap := lock.Snapshot.Data()
	return &ChecklistView{University: &snap, Items: items, Progress: journey.ComputeProgress(items)}, nil
}

func (s *checklistService) SetStatus(ctx context.Context, userID, itemID uuid.UUID, rawStatus string, notes *string) (*ChecklistItemResult, error) {
	status, err := journey.ParseChecklistStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	var (
		item   *types.ChecklistItem
		change *StageChange
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := lockAndGuard(dbc, s.users, userID, "update checklist item", journey.HoldingLock)
		if err != nil {
			return err
		}
		item, err = s.checklist.GetForUser(dbc, userID, itemID)
		if err != nil {
			return fmt.Errorf("load checklist item: %w", err)
		}
		if item == nil {
			return apierr.NotFound("checklist item not found")
		}
		item.ApplyStatus(status, s.now())
		if notes != nil {
			item.Notes = *notes
		}
		if err := s.checklist.Save(dbc, item); err != nil {
			return fmt.Errorf("save checklist item: %w", err)
		}
		if status.Progressed() {
			change, err = advance(dbc, s.users, u, journey.ActionChecklistProgressed)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.itemResult(ctx, userID, item, change)
}

func (s *checklistService) Complete(ctx context.Context, userID uuid.UUID, itemName string) (*ChecklistItemResult, error) {
	name := strings.ToUpper(strings.TrimSpace(itemName))
	if name == "" {
		return nil, apierr.Validation("item name is required")
	}
	var (
		item   *types.ChecklistItem
		change *StageChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := lockAndGuard(dbc, s.users, userID, "complete checklist item", journey.HoldingLock)
		if err != nil {
			return err
		}
		lock, err := s.requireLock(dbc, userID)
		if err != nil {
			return err
		}
		if _, _, err := s.ensureItems(dbc, userID, lock.ID); err != nil {
			return err
		}
		item, err = s.checklist.GetByName(dbc, lock.ID, name)
		if err != nil {
			return fmt.Errorf("load checklist item: %w", err)
		}
		if item == nil {
			return apierr.NotFound("checklist item %q not found", itemName)
		}
		if !item.Status.Progressed() {
			item.ApplyStatus(journey.ChecklistSubmitted, s.now())
			if err := s.checklist.Save(dbc, item); err != nil {
				return fmt.Errorf("save checklist item: %w", err)
			}
		}
		change, err = advance(dbc, s.users, u, journey.ActionChecklistProgressed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.itemResult(ctx, userID, item, change)
}

func (s *checklistService) itemResult(ctx context.Context, userID uuid.UUID, item *types.ChecklistItem, change *StageChange) (*ChecklistItemResult, error) {
	if change != nil {
		s.log.Info("Application started", "user_id", userID, "item", item.ItemName)
	}
	change, err := finishStageChange(ctx, s.tokens, userID, change)
	if err != nil {
		return nil, err
	}
	return &ChecklistItemResult{Item: item, StageChange: change}, nil
}
