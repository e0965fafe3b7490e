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
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

type SOPInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type SOPService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.SOPDraft, error)
	Create(ctx context.Context, userID uuid.UUID, in SOPInput) (*types.SOPDraft, error)
	Update(ctx context.Context, userID, draftID uuid.UUID, in SOPInput) (*types.SOPDraft, error)
	Delete(ctx context.Context, userID, draftID uuid.UUID) error
	// Generate drafts an SOP with the text provider and stores it as a new draft.
	Generate(ctx context.Context, userID uuid.UUID, request string) (*types.SOPDraft, error)
}

type sopService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	profiles repos.ProfileRepo
	drafts   repos.SOPDraftRepo
	gen      TextGenerator
	limiter  ratelimit.Limiter
	now      func() time.Time
}

func NewSOPService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	drafts repos.SOPDraftRepo,
	gen TextGenerator,
	limiter ratelimit.Limiter,
) SOPService {
	return &sopService{
		db:       db,
		log:      log.With("service", "SOPService"),
		users:    users,
		profiles: profiles,
		drafts:   drafts,
		gen:      gen,
		limiter:  limiter,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *sopService) List(ctx context.Context, userID uuid.UUID) ([]*types.SOPDraft, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "list SOP drafts", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	drafts, err := s.drafts.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	if drafts == nil {
		drafts = []*types.SOPDraft{}
	}
	return drafts, nil
}

func (s *sopService) Create(ctx context.Context, userID uuid.UUID, in SOPInput) (*types.SOPDraft, error) {
	title := ""
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if title == "" {
		return nil, apierr.Validation("title is required")
	}
	content := ""
	if in.Content != nil {
		content = *in.Content
	}
	draft := &types.SOPDraft{ID: uuid.New(), UserID: userID, Title: title}
	draft.SetContent(content)
	if err := s.insert(ctx, userID, "create SOP draft", draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *sopService) insert(ctx context.Context, userID uuid.UUID, op string, draft *types.SOPDraft) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, op, journey.AfterOnboarding); err != nil {
			return err
		}
		if err := s.drafts.Create(dbc, draft); err != nil {
			return fmt.Errorf("create draft: %w", err)
		}
		return nil
	})
}

func (s *sopService) Update(ctx context.Context, userID, draftID uuid.UUID, in SOPInput) (*types.SOPDraft, error) {
	var draft *types.SOPDraft
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "update SOP draft", journey.AfterOnboarding); err != nil {
			return err
		}
		var err error
		draft, err = s.drafts.GetForUser(dbc, userID, draftID)
		if err != nil {
			return fmt.Errorf("load draft: %w", err)
		}
		if draft == nil {
			return apierr.NotFound("SOP draft not found")
		}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apierr.Validation("title must not be empty")
			}
			draft.Title = title
		}
		if in.Content != nil {
			draft.SetContent(*in.Content)
		}
		if err := s.drafts.Save(dbc, draft); err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *sopService) Delete(ctx context.Context, userID, draftID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "delete SOP draft", journey.AfterOnboarding); err != nil {
			return err
		}
		removed, err := s.drafts.Delete(dbc, userID, draftID)
		if err != nil {
			return fmt.Errorf("delete draft: %w", err)
		}
		if !removed {
			return apierr.NotFound("SOP draft not found")
		}
		return nil
	})
}

func (s *sopService) Generate(ctx context.Context, userID uuid.UUID, request string) (*types.SOPDraft, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, apierr.Validation("prompt is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "generate SOP", journey.AfterOnboarding); err != nil {
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

	system, user := sopPrompt(profile, request)
	text, err := s.gen.GenerateText(ctx, system, user)
	if err != nil {
		s.log.Error("SOP generation failed", "user_id", userID, "error", err)
		return nil, apierr.ProviderUnavailable("SOP generation is temporarily unavailable")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.log.Warn("SOP generation returned empty text", "user_id", userID)
		return nil, apierr.ProviderUnavailable("SOP generation is temporarily unavailable")
	}

	draft := &types.SOPDraft{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "SOP Draft - " + s.now().Format("2006-01-02 15:04"),
	}
	draft.SetContent(text)
	if err := s.insert(ctx, userID, "generate SOP", draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func sopPrompt(p *types.Profile, request string) (string, string) {
	system := "You write Statements of Purpose for graduate and undergraduate admissions. " +
		"Write 500 to 800 words with an introduction, body and conclusion, in a professional academic tone. " +
		"Reply with the statement text only."

	var b strings.Builder
	b.WriteString("Student profile:\n")
	fmt.Fprintf(&b, "- Education: %s in %s\n", orUnknown(p.EducationLevel), orUnknown(p.Major))
	if p.GraduationYear > 0 {
		fmt.Fprintf(&b, "- Graduation year: %d\n", p.GraduationYear)
	}
	fmt.Fprintf(&b, "- Target degree: %s\n", orUnknown(p.TargetDegree))
	fmt.Fprintf(&b, "- Target field: %s\n", orUnknown(p.TargetField))
	fmt.Fprintf(&b, "- Target country: %s\n\n", orUnknown(p.TargetCountry))
	b.WriteString("Highlight the student's background, motivation and goals, and why they fit the target program.\n\n")
	fmt.Fprintf(&b, "Student request: %s", request)
	return system, b.String()
}
