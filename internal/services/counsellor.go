package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/chat"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

type ChatInput struct {
	Message        string     `json:"message"`
	ConversationID *uuid.UUID `json:"conversation_id"`
}

type ChatResult struct {
	Response          string    `json:"response"`
	ConversationID    uuid.UUID `json:"conversation_id"`
	IsNewConversation bool      `json:"is_new_conversation"`
}

type ChatHistory struct {
	Messages       []*types.CounsellorMessage `json:"messages"`
	ConversationID *uuid.UUID                 `json:"conversation_id"`
}

type NewConversationResult struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Greeting       string    `json:"greeting"`
}

type CounsellorService interface {
	Chat(ctx context.Context, userID uuid.UUID, in ChatInput) (*ChatResult, error)
	// History returns the caller's most recent conversation, oldest message first.
	History(ctx context.Context, userID uuid.UUID) (*ChatHistory, error)
	NewConversation(ctx context.Context, userID uuid.UUID) (*NewConversationResult, error)
}

type counsellorService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	profiles  repos.ProfileRepo
	shortlist repos.ShortlistRepo
	unis      repos.UniversityRepo
	locks     repos.LockedChoiceRepo
	messages  repos.CounsellorMessageRepo
	gen       TextGenerator
	limiter   ratelimit.Limiter
}

func NewCounsellorService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	shortlist repos.ShortlistRepo,
	unis repos.UniversityRepo,
	locks repos.LockedChoiceRepo,
	messages repos.CounsellorMessageRepo,
	gen TextGenerator,
	limiter ratelimit.Limiter,
) CounsellorService {
	return &counsellorService{
		db:        db,
		log:       log.With("service", "CounsellorService"),
		users:     users,
		profiles:  profiles,
		shortlist: shortlist,
		unis:      unis,
		locks:     locks,
		messages:  messages,
		gen:       gen,
		limiter:   limiter,
	}
}

func greeting(profile *types.Profile) string {
	name := "there"
	if profile != nil && profile.FirstName != "" {
		name = profile.FirstName
	}
	return fmt.Sprintf("Hi %s!\n\nI'm your AI Counsellor, here to help with your study abroad journey.\n\n"+
		"I can help you:\n"+
		"- review your profile and suggest improvements\n"+
		"- find universities that fit your goals\n"+
		"- understand your chances at competitive programs\n"+
		"- plan the next steps of your application\n\n"+
		"What would you like to know today?", name)
}

func (s *counsellorService) Chat(ctx context.Context, userID uuid.UUID, in ChatInput) (*ChatResult, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, apierr.Validation("message is required")
	}
	if _, err := loadAndGuard(dbctx.Context{Ctx: ctx}, s.users, userID, "counsellor chat", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	if err := checkRateLimit(ctx, s.limiter, userID); err != nil {
		return nil, err
	}

	var (
		res     = &ChatResult{}
		system  string
		history []*types.CounsellorMessage
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "counsellor chat", journey.AfterOnboarding); err != nil {
			return err
		}
		latest, err := s.messages.LatestConversation(dbc, userID)
		if err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}
		switch {
		case in.ConversationID != nil && *in.ConversationID != uuid.Nil:
			res.ConversationID = *in.ConversationID
		case latest != uuid.Nil:
			res.ConversationID = latest
		default:
			res.ConversationID = uuid.New()
		}
		profile, err := s.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		batch := []*types.CounsellorMessage{{UserID: userID, ConversationID: res.ConversationID, Role: chat.RoleUser, Content: text}}
		if latest == uuid.Nil {
			res.IsNewConversation = true
			res.Response = greeting(profile)
			batch = append(batch, &types.CounsellorMessage{
				UserID: userID, ConversationID: res.ConversationID, Role: chat.RoleAssistant, Content: res.Response,
			})
		}
		if err := s.messages.Create(dbc, batch); err != nil {
			return fmt.Errorf("save messages: %w", err)
		}
		if res.IsNewConversation {
			return nil
		}

		if history, err = s.messages.Recent(dbc, userID, res.ConversationID, chat.HistoryWindow); err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		system, err = s.systemPrompt(dbc, userID, profile)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.IsNewConversation {
		return res, nil
	}

	reply, err := s.gen.GenerateText(ctx, system, transcript(history))
	if err != nil {
		s.log.Error("Counsellor provider failed", "user_id", userID, "error", err)
		return nil, apierr.ProviderUnavailable("the counsellor is temporarily unavailable")
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apierr.ProviderUnavailable("the counsellor is temporarily unavailable")
	}
	err = s.messages.Create(dbctx.Context{Ctx: ctx}, []*types.CounsellorMessage{{
		UserID: userID, ConversationID: res.ConversationID, Role: chat.RoleAssistant, Content: reply,
	}})
	if err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}
	res.Response = reply
	return res, nil
}

type shortlistedSummary struct {
	Name             string `json:"name"`
	Country          string `json:"country"`
	Degree           string `json:"degree"`
	Field            string `json:"field"`
	EstimatedTuition int    `json:"estimated_tuition"`
	Difficulty       string `json:"difficulty"`
}

func (s *counsellorService) systemPrompt(dbc dbctx.Context, userID uuid.UUID, p *types.Profile) (string, error) {
	lock, err := s.locks.GetByUserID(dbc, userID)
	if err != nil {
		return "", fmt.Errorf("load lock: %w", err)
	}
	ids, err := s.shortlist.UniversityIDs(dbc, userID)
	if err != nil {
		return "", fmt.Errorf("load shortlist: %w", err)
	}
	idList := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	unis, err := s.unis.GetByIDs(dbc, idList)
	if err != nil {
		return "", fmt.Errorf("load universities: %w", err)
	}
	shortlisted := make([]shortlistedSummary, 0, len(unis))
	for _, u := range unis {
		shortlisted = append(shortlisted, shortlistedSummary{
			Name: u.Name, Country: u.Country, Degree: u.Degree, Field: u.Field,
			EstimatedTuition: u.EstimatedTuition(), Difficulty: string(u.Difficulty),
		})
	}

	var b strings.Builder
	b.WriteString("You are an expert admissions counsellor helping a student with their university application journey.\n\n")
	b.WriteString("Student profile:\n")
	if p != nil {
		fmt.Fprintf(&b, "- Name: %s %s\n", p.FirstName, p.LastName)
		fmt.Fprintf(&b, "- Education: %s in %s\n", orUnknown(p.EducationLevel), orUnknown(p.Major))
		fmt.Fprintf(&b, "- Graduation year: %d\n", p.GraduationYear)
		fmt.Fprintf(&b, "- Target degree: %s\n", orUnknown(p.TargetDegree))
		fmt.Fprintf(&b, "- Target field: %s\n", orUnknown(p.TargetField))
		fmt.Fprintf(&b, "- Target country: %s\n", orUnknown(p.TargetCountry))
		fmt.Fprintf(&b, "- Budget range: %s\n", orUnknown(p.BudgetRange))
		if p.IELTS != nil {
			fmt.Fprintf(&b, "- IELTS: %.1f\n", *p.IELTS)
		}
		if p.TOEFL != nil {
			fmt.Fprintf(&b, "- TOEFL: %d\n", *p.TOEFL)
		}
		fmt.Fprintf(&b, "- SOP status: %s\n", orUnknown(p.SOPStatus))
		fmt.Fprintf(&b, "- LOR status: %s\n", orUnknown(p.LORStatus))
	} else {
		b.WriteString("- not provided\n")
	}
	b.WriteString("\n")
	if lock != nil {
		raw, _ := json.Marshal(lock.Snapshot.Data())
		fmt.Fprintf(&b, "Locked university: %s\n\n", raw)
	} else {
		b.WriteString("No locked university yet.\n\n")
	}
	raw, _ := json.Marshal(shortlisted)
	fmt.Fprintf(&b, "Shortlisted universities: %s\n\n", raw)
	b.WriteString("Give helpful, personalized advice about their application. Be encouraging, specific and actionable. Keep replies concise.")
	return b.String(), nil
}

// transcript renders history as the user turn; the last line is the message to answer.
func transcript(history []*types.CounsellorMessage) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, m := range history {
		who := "Student"
		if m.Role == chat.RoleAssistant {
			who = "Counsellor"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, m.Content)
	}
	b.WriteString("\nReply as the Counsellor to the student's last message.")
	return b.String()
}

func (s *counsellorService) History(ctx context.Context, userID uuid.UUID) (*ChatHistory, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "counsellor history", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	convID, err := s.messages.LatestConversation(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if convID == uuid.Nil {
		return &ChatHistory{Messages: []*types.CounsellorMessage{}}, nil
	}
	msgs, err := s.messages.Recent(dbc, userID, convID, 0)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &ChatHistory{Messages: msgs, ConversationID: &convID}, nil
}

func (s *counsellorService) NewConversation(ctx context.Context, userID uuid.UUID) (*NewConversationResult, error) {
	res := &NewConversationResult{ConversationID: uuid.New()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "new conversation", journey.AfterOnboarding); err != nil {
			return err
		}
		profile, err := s.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		res.Greeting = greeting(profile)
		return s.messages.Create(dbc, []*types.CounsellorMessage{{
			UserID: userID, ConversationID: res.ConversationID, Role: chat.RoleAssistant, Content: res.Greeting,
		}})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
