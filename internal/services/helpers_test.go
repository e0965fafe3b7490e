package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	"github.com/yungbote/unibridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

type env struct {
	db  *gorm.DB
	log *logger.Logger

	users      repos.UserRepo
	profiles   repos.ProfileRepo
	tokens     repos.UserTokenRepo
	otps       repos.EmailOTPRepo
	unis       repos.UniversityRepo
	shortlist  repos.ShortlistRepo
	locks      repos.LockedChoiceRepo
	checklist  repos.ChecklistRepo
	exclusion  repos.ExclusionMemoryRepo
	tasks      repos.TaskRepo
	documents  repos.DocumentRepo
	sopDrafts  repos.SOPDraftRepo
	counsellor repos.CounsellorMessageRepo

	issuer *fakeIssuer
	clock  *fakeClock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := logger.NewNop()
	return &env{
		db:         db,
		log:        log,
		users:      repos.NewUserRepo(db, log),
		profiles:   repos.NewProfileRepo(db, log),
		tokens:     repos.NewUserTokenRepo(db, log),
		otps:       repos.NewEmailOTPRepo(db, log),
		unis:       repos.NewUniversityRepo(db, log),
		shortlist:  repos.NewShortlistRepo(db, log),
		locks:      repos.NewLockedChoiceRepo(db, log),
		checklist:  repos.NewChecklistRepo(db, log),
		exclusion:  repos.NewExclusionMemoryRepo(db, log),
		tasks:      repos.NewTaskRepo(db, log),
		documents:  repos.NewDocumentRepo(db, log),
		sopDrafts:  repos.NewSOPDraftRepo(db, log),
		counsellor: repos.NewCounsellorMessageRepo(db, log),
		issuer:     &fakeIssuer{},
		clock:      &fakeClock{t: time.Now().UTC()},
	}
}

// seedUser creates a user at stage, with a completed profile unless stage is ONBOARDING.
func (e *env) seedUser(t *testing.T, stage journey.Stage) *types.User {
	t.Helper()
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, e.db, stage)
	if stage != journey.StageOnboarding {
		p := &types.Profile{
			ID:             uuid.New(),
			UserID:         u.ID,
			FirstName:      "Ada",
			LastName:       "Lovelace",
			EducationLevel: "Bachelors",
			Major:          "Mathematics",
			GraduationYear: 2024,
			TargetDegree:   "Masters",
			TargetField:    "Computer Science",
			TargetCountry:  "Canada",
			BudgetRange:    "30000-40000",
			IsComplete:     true,
		}
		require.NoError(t, e.db.Create(p).Error)
	}
	return u
}

func (e *env) seedUniversity(t *testing.T, name string) *types.University {
	t.Helper()
	return testutil.SeedUniversity(t, context.Background(), e.db, name)
}

func (e *env) stageOf(t *testing.T, userID uuid.UUID) journey.Stage {
	t.Helper()
	var u types.User
	require.NoError(t, e.db.First(&u, "id = ?", userID).Error)
	return u.Stage
}

// callerCtx returns a request context for userID with a fixed session.
func callerCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:    userID,
		SessionID: uuid.MustParse("00000000-0000-0000-0000-00000000beef"),
	})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apierr.CodeOf(err), "error: %v", err)
}

type fakeIssuer struct {
	mu     sync.Mutex
	issued []journey.Stage
}

func (f *fakeIssuer) IssueAccessToken(userID, sessionID uuid.UUID, stage journey.Stage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, stage)
	return fmt.Sprintf("token:%s:%s:%s", userID, sessionID, stage), nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (e *env) limiter() *ratelimit.SlidingWindow {
	return ratelimit.NewSlidingWindow(ratelimit.DefaultLimit, ratelimit.DefaultWindow, e.clock.Now)
}

// fakeGenerator returns scripted replies in order, repeating the last one.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) GenerateText(_ context.Context, system string, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, system+"\n"+user)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	i := g.calls - 1
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	return g.replies[i], nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// candidatesJSON renders names as a provider reply.
func candidatesJSON(names ...string) string {
	out := "Here you go:\n["
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"name":%q,"country":"Canada","degree":"Masters","field":"CS","estimated_tuition":"$%d,000","difficulty":"high"}`, n, 30+i)
	}
	return out + "]\nGood luck!"
}

type capturingMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (m *capturingMailer) Send(_ context.Context, msg Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *capturingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
