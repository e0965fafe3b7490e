package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type DashboardMetrics struct {
	ProfileStrength int   `json:"profile_strength"`
	Shortlisted     int64 `json:"shortlisted"`
	Locked          bool  `json:"locked"`
	PendingTasks    int64 `json:"pending_tasks"`
}

type JourneyStep struct {
	Stage       journey.Stage `json:"stage"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Completed   bool          `json:"completed"`
	Current     bool          `json:"current"`
}

type Dashboard struct {
	Username     string            `json:"username"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Stage        journey.Stage     `json:"stage"`
	Metrics      DashboardMetrics  `json:"metrics"`
	Checklist    *journey.Progress `json:"checklist"`
	Profile      *types.Profile    `json:"profile"`
	JourneySteps []JourneyStep     `json:"journey_steps"`
}

type DashboardService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type dashboardService struct {
	log       *logger.Logger
	users     repos.UserRepo
	profiles  repos.ProfileRepo
	shortlist repos.ShortlistRepo
	locks     repos.LockedChoiceRepo
	checklist repos.ChecklistRepo
	tasks     repos.TaskRepo
}

func NewDashboardService(
	log *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	shortlist repos.ShortlistRepo,
	locks repos.LockedChoiceRepo,
	checklist repos.ChecklistRepo,
	tasks repos.TaskRepo,
) DashboardService {
	return &dashboardService{
		log:       log.With("service", "DashboardService"),
		users:     users,
		profiles:  profiles,
		shortlist: shortlist,
		locks:     locks,
		checklist: checklist,
		tasks:     tasks,
	}
}

var journeySteps = map[journey.Stage][2]string{
	journey.StageOnboarding:   {"Building Profile", "Complete your academic profile"},
	journey.StageDiscovery:    {"Discovering", "Explore recommended universities"},
	journey.StageShortlisting: {"Shortlisting", "Shortlist the universities you like"},
	journey.StageLocked:       {"Finalizing", "Lock your final choice"},
	journey.StageApplication:  {"Preparing", "Complete your application checklist"},
}

func (s *dashboardService) Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	dbc := dbctx.Context{Ctx: ctx}
	u, err := loadAndGuard(dbc, s.users, userID, "dashboard", journey.Any)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	shortlisted, err := s.shortlist.CountByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count shortlist: %w", err)
	}
	pending, err := s.tasks.CountOpen(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	lock, err := s.locks.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load lock: %w", err)
	}

	d := &Dashboard{
		Username:  strings.SplitN(u.Email, "@", 2)[0],
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Stage:     u.Stage,
		Profile:   profile,
		Metrics: DashboardMetrics{
			ProfileStrength: profileStrength(profile),
			Shortlisted:     shortlisted,
			Locked:          lock != nil,
			PendingTasks:    pending,
		},
		JourneySteps: buildJourneySteps(u.Stage),
	}
	if lock != nil {
		items, err := s.checklist.ListByLock(dbc, lock.ID)
		if err != nil {
			return nil, fmt.Errorf("list checklist: %w", err)
		}
		p := journey.ComputeProgress(items)
		d.Checklist = &p
	}
	return d, nil
}

func profileStrength(p *types.Profile) int {
	switch {
	case p == nil:
		return 0
	case p.IsComplete:
		return 100
	default:
		return 75
	}
}

func buildJourneySteps(current journey.Stage) []JourneyStep {
	rank := current.Rank()
	steps := make([]JourneyStep, 0, len(journey.Stages))
	for _, st := range journey.Stages {
		text := journeySteps[st]
		steps = append(steps, JourneyStep{
			Stage:       st,
			Title:       text[0],
			Description: text[1],
			Completed:   st.Rank() < rank,
			Current:     st == current,
		})
	}
	return steps
}
