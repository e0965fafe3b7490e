package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/observability"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

// refreshMinimum is how many candidates a refresh backfills up to when filtering left fewer.
const refreshMinimum = 3

type UniversityView struct {
	types.University
	EstimatedTuition int  `json:"estimated_tuition"`
	IsShortlisted    bool `json:"is_shortlisted"`
}

func newUniversityView(u *types.University, shortlisted bool) UniversityView {
	return UniversityView{University: *u, EstimatedTuition: u.EstimatedTuition(), IsShortlisted: shortlisted}
}

type DiscoverResult struct {
	Universities []UniversityView `json:"universities"`
	Count        int              `json:"count"`
}

type CandidatePoolService interface {
	Discover(ctx context.Context, userID uuid.UUID) (*DiscoverResult, error)
	// Refresh is Discover with the names surfaced by the previous refresh filtered out.
	Refresh(ctx context.Context, userID uuid.UUID) (*DiscoverResult, error)
}

type candidatePoolService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	profiles   repos.ProfileRepo
	unis       repos.UniversityRepo
	shortlist  repos.ShortlistRepo
	exclusions repos.ExclusionMemoryRepo
	provider   CandidateProvider
	limiter    ratelimit.Limiter
}

func NewCandidatePoolService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	unis repos.UniversityRepo,
	shortlist repos.ShortlistRepo,
	exclusions repos.ExclusionMemoryRepo,
	provider CandidateProvider,
	limiter ratelimit.Limiter,
) CandidatePoolService {
	return &candidatePoolService{
		db:         db,
		log:        log.With("service", "CandidatePoolService"),
		users:      users,
		profiles:   profiles,
		unis:       unis,
		shortlist:  shortlist,
		exclusions: exclusions,
		provider:   provider,
		limiter:    limiter,
	}
}

func (s *candidatePoolService) Discover(ctx context.Context, userID uuid.UUID) (*DiscoverResult, error) {
	candidates, err := s.fetch(ctx, userID, "discover universities")
	if err != nil {
		return nil, err
	}

	var views []UniversityView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		stored, err := s.unis.ResolveOrCreate(dbc, toUniversities(candidates))
		if err != nil {
			return fmt.Errorf("resolve universities: %w", err)
		}
		shortlisted, err := s.shortlist.UniversityIDs(dbc, userID)
		if err != nil {
			return fmt.Errorf("load shortlist: %w", err)
		}
		for _, u := range stored {
			if len(views) == CandidateCount {
				break
			}
			views = append(views, newUniversityView(u, shortlisted[u.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &DiscoverResult{Universities: nonNilViews(views), Count: len(views)}, nil
}

func (s *candidatePoolService) Refresh(ctx context.Context, userID uuid.UUID) (*DiscoverResult, error) {
	candidates, err := s.fetch(ctx, userID, "refresh universities")
	if err != nil {
		return nil, err
	}

	var views []UniversityView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "refresh universities", journey.AfterOnboarding); err != nil {
			return err
		}
		previous, err := s.exclusions.Get(dbc, userID)
		if err != nil {
			return fmt.Errorf("load exclusion memory: %w", err)
		}
		keys := make([]string, 0, len(candidates))
		for _, c := range candidates {
			keys = append(keys, c.NameKey)
		}
		if err := s.exclusions.Replace(dbc, userID, keys); err != nil {
			return fmt.Errorf("save exclusion memory: %w", err)
		}

		stored, err := s.unis.ResolveOrCreate(dbc, toUniversities(candidates))
		if err != nil {
			return fmt.Errorf("resolve universities: %w", err)
		}
		shortlisted, err := s.shortlist.UniversityIDs(dbc, userID)
		if err != nil {
			return fmt.Errorf("load shortlist: %w", err)
		}

		picked := map[uuid.UUID]bool{}
		for _, u := range stored {
			if len(views) == CandidateCount {
				break
			}
			if shortlisted[u.ID] || previous.Contains(u.NameKey) {
				continue
			}
			picked[u.ID] = true
			views = append(views, newUniversityView(u, false))
		}
		for _, u := range stored {
			if len(views) >= refreshMinimum {
				break
			}
			if shortlisted[u.ID] || picked[u.ID] {
				continue
			}
			picked[u.ID] = true
			views = append(views, newUniversityView(u, false))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &DiscoverResult{Universities: nonNilViews(views), Count: len(views)}, nil
}

// fetch runs the guard, the rate limit and the provider call, in that order, outside any transaction.
func (s *candidatePoolService) fetch(ctx context.Context, userID uuid.UUID, op string) ([]Candidate, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, op, journey.AfterOnboarding); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, apierr.NotFound("profile not found")
	}

	if err := checkRateLimit(ctx, s.limiter, userID); err != nil {
		return nil, err
	}

	candidates, err := s.provider.Candidates(ctx, profile, CandidateCount)
	if err != nil {
		s.log.Error("Candidate provider failed", "user_id", userID, "error", err)
		return nil, apierr.ProviderUnavailable("university recommendations are temporarily unavailable")
	}
	if len(candidates) == 0 {
		s.log.Warn("Candidate provider returned no usable universities", "user_id", userID)
		return nil, apierr.ProviderUnavailable("university recommendations are temporarily unavailable")
	}
	return candidates, nil
}

// checkRateLimit consumes one provider call from the caller's window.
func checkRateLimit(ctx context.Context, limiter ratelimit.Limiter, userID uuid.UUID) error {
	if limiter == nil {
		return nil
	}
	ok, err := limiter.Allow(ctx, userID.String())
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if !ok {
		observability.Current().IncRateLimited("provider")
		return apierr.RateLimited("too many requests; please wait a moment and try again")
	}
	return nil
}

func toUniversities(candidates []Candidate) []*types.University {
	out := make([]*types.University, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.toUniversity())
	}
	return out
}

func nonNilViews(v []UniversityView) []UniversityView {
	if v == nil {
		return []UniversityView{}
	}
	return v
}
