package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type ShortlistItem struct {
	UniversityView
	ShortlistedAt time.Time `json:"shortlisted_at"`
}

type ShortlistResult struct {
	UniversityID uuid.UUID `json:"university_id"`
	Count        int64     `json:"shortlist_count"`
	*StageChange
}

type LockResult struct {
	Lock *types.LockedChoice `json:"lock"`
	*StageChange
}

type UnlockResult struct {
	RemovedChecklistItems int64 `json:"removed_checklist_items"`
	*StageChange
}

type LockView struct {
	Locked     bool              `json:"locked"`
	University *journey.Snapshot `json:"university"`
	LockedAt   *time.Time        `json:"locked_at"`
}

type ShortlistService interface {
	Add(ctx context.Context, userID, universityID uuid.UUID) (*ShortlistResult, error)
	Remove(ctx context.Context, userID, universityID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]ShortlistItem, error)
	Lock(ctx context.Context, userID, universityID uuid.UUID) (*LockResult, error)
	Unlock(ctx context.Context, userID uuid.UUID) (*UnlockResult, error)
	GetLock(ctx context.Context, userID uuid.UUID) (*LockView, error)
}

type shortlistService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	unis      repos.UniversityRepo
	shortlist repos.ShortlistRepo
	locks     repos.LockedChoiceRepo
	checklist repos.ChecklistRepo
	tokens    TokenIssuer
	now       func() time.Time
}

func NewShortlistService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	unis repos.UniversityRepo,
	shortlist repos.ShortlistRepo,
	locks repos.LockedChoiceRepo,
	checklist repos.ChecklistRepo,
	tokens TokenIssuer,
) ShortlistService {
	return &shortlistService{
		db:        db,
		log:       log.With("service", "ShortlistService"),
		users:     users,
		unis:      unis,
		shortlist: shortlist,
		locks:     locks,
		checklist: checklist,
		tokens:    tokens,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *shortlistService) Add(ctx context.Context, userID, universityID uuid.UUID) (*ShortlistResult, error) {
	res := &ShortlistResult{UniversityID: universityID}
	var change *StageChange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := lockAndGuard(dbc, s.users, userID, "add to shortlist", journey.Selecting)
		if err != nil {
			return err
		}
		uni, err := s.unis.GetByID(dbc, universityID)
		if err != nil {
			return fmt.Errorf("load university: %w", err)
		}
		if uni == nil {
			return apierr.NotFound("university not found")
		}
		count, err := s.shortlist.CountByUser(dbc, userID)
		if err != nil {
			return fmt.Errorf("count shortlist: %w", err)
		}
		if count >= journey.MaxShortlist {
			return apierr.Conflict("maximum %d universities allowed in shortlist", journey.MaxShortlist)
		}
		exists, err := s.shortlist.Exists(dbc, userID, universityID)
		if err != nil {
			return fmt.Errorf("check shortlist: %w", err)
		}
		if exists {
			return apierr.Conflict("university already shortlisted")
		}
		entry := &types.ShortlistEntry{UserID: userID, UniversityID: universityID}
		if err := s.shortlist.Create(dbc, entry); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflict("university already shortlisted")
			}
			return fmt.Errorf("create shortlist entry: %w", err)
		}
		res.Count = count + 1
		if count == 0 {
			change, err = advance(dbc, s.users, u, journey.ActionFirstShortlisted)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.StageChange, err = finishStageChange(ctx, s.tokens, userID, change); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *shortlistService) Remove(ctx context.Context, userID, universityID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "remove from shortlist", journey.Selecting); err != nil {
			return err
		}
		removed, err := s.shortlist.Delete(dbc, userID, universityID)
		if err != nil {
			return fmt.Errorf("delete shortlist entry: %w", err)
		}
		if !removed {
			return apierr.NotFound("not found in shortlist")
		}
		return nil
	})
}

func (s *shortlistService) List(ctx context.Context, userID uuid.UUID) ([]ShortlistItem, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "list shortlist", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	entries, err := s.shortlist.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list shortlist: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UniversityID)
	}
	unis, err := s.unis.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load universities: %w", err)
	}
	byID := make(map[uuid.UUID]*types.University, len(unis))
	for _, u := range unis {
		byID[u.ID] = u
	}
	out := make([]ShortlistItem, 0, len(entries))
	for _, e := range entries {
		u, ok := byID[e.UniversityID]
		if !ok {
			continue
		}
		out = append(out, ShortlistItem{UniversityView: newUniversityView(u, true), ShortlistedAt: e.CreatedAt})
	}
	return out, nil
}

func (s *shortlistService) Lock(ctx context.Context, userID, universityID uuid.UUID) (*LockResult, error) {
	var (
		lock   *types.LockedChoice
		change *StageChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := lockAndGuard(dbc, s.users, userID, "lock university", journey.Lockable)
		if err != nil {
			return err
		}
		uni, err := s.unis.GetByID(dbc, universityID)
		if err != nil {
			return fmt.Errorf("load university: %w", err)
		}
		if uni == nil {
			return apierr.NotFound("university not found")
		}
		shortlisted, err := s.shortlist.Exists(dbc, userID, universityID)
		if err != nil {
			return fmt.Errorf("check shortlist: %w", err)
		}
		if !shortlisted {
			return apierr.Conflict("university must be in shortlist before locking")
		}
		existing, err := s.locks.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load lock: %w", err)
		}
		if existing != nil {
			return apierr.Conflict("you already have a locked university")
		}
		lock = &types.LockedChoice{
			ID:           uuid.New(),
			UserID:       userID,
			UniversityID: uni.ID,
			Snapshot:     datatypes.NewJSONType(snapshotOf(uni)),
			LockedAt:     s.now(),
		}
		if err := s.locks.Create(dbc, lock); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflict("you already have a locked university")
			}
			return fmt.Errorf("create lock: %w", err)
		}
		change, err = advance(dbc, s.users, u, journey.ActionLocked)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("University locked", "user_id", userID, "university_id", universityID)

	res := &LockResult{Lock: lock}
	if res.StageChange, err = finishStageChange(ctx, s.tokens, userID, change); err != nil {
		return nil, err
	}
	return res, nil
}

func snapshotOf(u *types.University) journey.Snapshot {
	return journey.Snapshot{
		ID:         u.ID.String(),
		Name:       u.Name,
		Country:    u.Country,
		Degree:     u.Degree,
		Field:      u.Field,
		TuitionMin: u.TuitionMin,
		TuitionMax: u.TuitionMax,
		Difficulty: string(u.Difficulty),
	}
}

func (s *shortlistService) Unlock(ctx context.Context, userID uuid.UUID) (*UnlockResult, error) {
	res := &UnlockResult{}
	var change *StageChange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := lockAndGuard(dbc, s.users, userID, "unlock university", journey.HoldingLock)
		if err != nil {
			return err
		}
		lock, err := s.locks.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load lock: %w", err)
		}
		if lock == nil {
			return apierr.NotFound("no locked university to unlock")
		}
		if res.RemovedChecklistItems, err = s.checklist.DeleteByLock(dbc, lock.ID); err != nil {
			return fmt.Errorf("delete checklist: %w", err)
		}
		if err := s.locks.DeleteByID(dbc, lock.ID); err != nil {
			return fmt.Errorf("delete lock: %w", err)
		}
		change, err = advance(dbc, s.users, u, journey.ActionUnlocked)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("University unlocked", "user_id", userID, "checklist_items_removed", res.RemovedChecklistItems)

	if res.StageChange, err = finishStageChange(ctx, s.tokens, userID, change); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *shortlistService) GetLock(ctx context.Context, userID uuid.UUID) (*LockView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "get lock", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	lock, err := s.locks.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load lock: %w", err)
	}
	if lock == nil {
		return &LockView{}, nil
	}
	snap := lock.Snapshot.Data()
	lockedAt := lock.LockedAt
	return &LockView{Locked: true, University: &snap, LockedAt: &lockedAt}, nil
}
