package services

import (
	"context"
	"fmt"
	"strings"

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

// ProfileInput carries onboarding answers and profile edits. Nil fields are left unchanged
// on update.
type ProfileInput struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	MobileNumber   *string  `json:"mobile_number"`
	EducationLevel *string  `json:"education_level"`
	Major          *string  `json:"major"`
	GraduationYear *int     `json:"graduation_year"`
	GPA            *float64 `json:"gpa"`
	IELTS          *float64 `json:"ielts"`
	TOEFL          *int     `json:"toefl"`
	GRE            *int     `json:"gre"`
	GMAT           *int     `json:"gmat"`
	SOPStatus      *string  `json:"sop_status"`
	LORStatus      *string  `json:"lor_status"`
	TargetDegree   *string  `json:"target_degree"`
	TargetField    *string  `json:"target_field"`
	TargetCountry  *string  `json:"target_country"`
	TargetIntake   *string  `json:"target_intake"`
	BudgetRange    *string  `json:"budget_range"`
	FundingPlan    *string  `json:"funding_plan"`
}

type OnboardingResult struct {
	Profile *types.Profile `json:"profile"`
	*StageChange
}

type MeResult struct {
	User    *types.User    `json:"user"`
	Profile *types.Profile `json:"profile"`
}

type ProfileService interface {
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, in ProfileInput) (*OnboardingResult, error)
	Get(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.Profile, error)
	Me(ctx context.Context, userID uuid.UUID) (*MeResult, error)
}

type profileService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	profiles repos.ProfileRepo
	tasks    repos.TaskRepo
	tokens   TokenIssuer
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	tasks repos.TaskRepo,
	tokens TokenIssuer,
) ProfileService {
	return &profileService{
		db:       db,
		log:      log.With("service", "ProfileService"),
		users:    users,
		profiles: profiles,
		tasks:    tasks,
		tokens:   tokens,
	}
}

// starterTasks are created for every user when onboarding completes.
var starterTasks = []struct{ title, priority, category string }{
	{"Research Scholarship Options", "High", "Financial"},
	{"Arrange Financial Documents", "High", "Financial"},
	{"Prepare CV / Resume", "Medium", "Documents"},
	{"Gather Letters of Recommendation", "Medium", "Documents"},
	{"Complete IELTS / TOEFL if required", "Medium", "Exams"},
	{"Prepare Application Essays", "Low", "Documents"},
}

func (ps *profileService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, in ProfileInput) (*OnboardingResult, error) {
	if err := validateOnboarding(in); err != nil {
		return nil, err
	}
	profile := &types.Profile{UserID: userID, IsComplete: true}
	applyProfileInput(profile, in)

	var change *StageChange
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := lockAndGuard(dbc, ps.users, userID, "complete onboarding", journey.OnlyOnboarding)
		if err != nil {
			return err
		}
		existing, err := ps.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if existing != nil && existing.IsComplete {
			return apierr.Conflict("onboarding already completed")
		}
		if existing != nil {
			profile.ID = existing.ID
			profile.CreatedAt = existing.CreatedAt
		}
		if err := ps.profiles.Upsert(dbc, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := ps.users.UpdateName(dbc, userID, profile.FirstName, profile.LastName); err != nil {
			return fmt.Errorf("update name: %w", err)
		}
		for _, st := range starterTasks {
			task := &types.Task{
				ID:       uuid.New(),
				UserID:   userID,
				Title:    st.title,
				Priority: st.priority,
				Category: st.category,
				Status:   workspace.TaskTodo,
			}
			if err := ps.tasks.Create(dbc, task); err != nil {
				return fmt.Errorf("create starter task: %w", err)
			}
		}
		change, err = advance(dbc, ps.users, u, journey.ActionOnboardingCompleted)
		return err
	})
	if err != nil {
		return nil, err
	}
	ps.log.Info("Onboarding completed", "user_id", userID)

	change, err = finishStageChange(ctx, ps.tokens, userID, change)
	if err != nil {
		return nil, err
	}
	return &OnboardingResult{Profile: profile, StageChange: change}, nil
}

func validateOnboarding(in ProfileInput) error {
	required := []struct {
		name  string
		value *string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"education_level", in.EducationLevel},
		{"major", in.Major},
		{"target_degree", in.TargetDegree},
		{"target_field", in.TargetField},
		{"target_country", in.TargetCountry},
		{"budget_range", in.BudgetRange},
	}
	var missing []string
	for _, f := range required {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if in.GraduationYear == nil || *in.GraduationYear <= 0 {
		missing = append(missing, "graduation_year")
	}
	if len(missing) > 0 {
		return apierr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return validateScores(in)
}

func validateScores(in ProfileInput) error {
	if in.GPA != nil && (*in.GPA < 0 || *in.GPA > 10) {
		return apierr.Validation("gpa must be between 0 and 10")
	}
	if in.IELTS != nil && (*in.IELTS < 0 || *in.IELTS > 9) {
		return apierr.Validation("ielts must be between 0 and 9")
	}
	if in.TOEFL != nil && (*in.TOEFL < 0 || *in.TOEFL > 120) {
		return apierr.Validation("toefl must be between 0 and 120")
	}
	if in.GRE != nil && (*in.GRE < 0 || *in.GRE > 340) {
		return apierr.Validation("gre must be between 0 and 340")
	}
	if in.GMAT != nil && (*in.GMAT < 0 || *in.GMAT > 800) {
		return apierr.Validation("gmat must be between 0 and 800")
	}
	return nil
}

func applyProfileInput(p *types.Profile, in ProfileInput) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&p.FirstName, in.FirstName)
	setString(&p.LastName, in.LastName)
	setString(&p.MobileNumber, in.MobileNumber)
	setString(&p.EducationLevel, in.EducationLevel)
	setString(&p.Major, in.Major)
	setString(&p.SOPStatus, in.SOPStatus)
	setString(&p.LORStatus, in.LORStatus)
	setString(&p.TargetDegree, in.TargetDegree)
	setString(&p.TargetField, in.TargetField)
	setString(&p.TargetCountry, in.TargetCountry)
	setString(&p.TargetIntake, in.TargetIntake)
	setString(&p.BudgetRange, in.BudgetRange)
	setString(&p.FundingPlan, in.FundingPlan)
	if in.GraduationYear != nil {
		p.GraduationYear = *in.GraduationYear
	}
	if in.GPA != nil {
		p.GPA = in.GPA
	}
	if in.IELTS != nil {
		p.IELTS = in.IELTS
	}
	if in.TOEFL != nil {
		p.TOEFL = in.TOEFL
	}
	if in.GRE != nil {
		p.GRE = in.GRE
	}
	if in.GMAT != nil {
		p.GMAT = in.GMAT
	}
}

func (ps *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, ps.users, userID, "get profile", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	profile, err := ps.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, apierr.NotFound("profile not found")
	}
	return profile, nil
}

func (ps *profileService) Update(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.Profile, error) {
	if err := validateScores(in); err != nil {
		return nil, err
	}
	var profile *types.Profile
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, ps.users, userID, "update profile", journey.AfterOnboarding); err != nil {
			return err
		}
		var err error
		profile, err = ps.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if profile == nil {
			return apierr.NotFound("profile not found")
		}
		applyProfileInput(profile, in)
		if err := ps.profiles.Upsert(dbc, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if in.FirstName != nil || in.LastName != nil {
			if err := ps.users.UpdateName(dbc, userID, profile.FirstName, profile.LastName); err != nil {
				return fmt.Errorf("update name: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (ps *profileService) Me(ctx context.Context, userID uuid.UUID) (*MeResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	u, err := loadAndGuard(dbc, ps.users, userID, "get current user", journey.Any)
	if err != nil {
		return nil, err
	}
	profile, err := ps.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &MeResult{User: u, Profile: profile}, nil
}
