package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/ratelimit"
)

func newPool(e *env, gen TextGenerator, limiter ratelimit.Limiter) CandidatePoolService {
	return NewCandidatePoolService(e.db, e.log, e.users, e.profiles, e.unis, e.shortlist, e.exclusion,
		NewCandidateProvider(gen), limiter)
}

func names(prefix string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%s University %d", prefix, i+1))
	}
	return out
}

func resultNames(r *DiscoverResult) []string {
	out := make([]string, 0, len(r.Universities))
	for _, u := range r.Universities {
		out = append(out, u.Name)
	}
	return out
}

func TestDiscoverReturnsAtMostTwelveValidCandidates(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	gen := &fakeGenerator{replies: []string{candidatesJSON(names("North", 15)...)}}
	pool := newPool(e, gen, e.limiter())

	res, err := pool.Discover(callerCtx(u.ID), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Count)
	require.Len(t, res.Universities, 12)
	for _, v := range res.Universities {
		assert.NotEmpty(t, v.Name)
		assert.NotEmpty(t, v.Country)
		assert.Contains(t, []catalog.Difficulty{catalog.DifficultyLow, catalog.DifficultyMedium, catalog.DifficultyHigh}, v.Difficulty)
		assert.True(t, v.GeneratedByAI)
		assert.False(t, v.IsShortlisted)
		assert.Equal(t, (v.TuitionMin+v.TuitionMax)/2, v.EstimatedTuition)
	}

	// Candidates are stored once by normalized name.
	_, err = pool.Discover(callerCtx(u.ID), u.ID)
	require.NoError(t, err)
	var n int64
	require.NoError(t, e.db.Model(&types.University{}).Count(&n).Error)
	assert.EqualValues(t, 15, n)
}

func TestDiscoverReusesExistingUniversityAndMarksShortlisted(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageShortlisting)
	existing := e.seedUniversity(t, "North University 1")
	require.NoError(t, e.db.Create(&types.ShortlistEntry{ID: uuid.New(), UserID: u.ID, UniversityID: existing.ID}).Error)

	pool := newPool(e, &fakeGenerator{replies: []string{candidatesJSON("north university 1", "South College")}}, e.limiter())
	res, err := pool.Discover(callerCtx(u.ID), u.ID)
	require.NoError(t, err)
	require.Len(t, res.Universities, 2)
	assert.Equal(t, existing.ID, res.Universities[0].ID)
	assert.Equal(t, "North University 1", res.Universities[0].Name)
	assert.False(t, res.Universities[0].GeneratedByAI)
	assert.True(t, res.Universities[0].IsShortlisted)
	assert.False(t, res.Universities[1].IsShortlisted)
}

func TestDiscoverRateLimit(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	gen := &fakeGenerator{replies: []string{candidatesJSON("A", "B", "C")}}
	pool := newPool(e, gen, e.limiter())
	ctx := callerCtx(u.ID)

	for i := 0; i < 3; i++ {
		_, err := pool.Discover(ctx, u.ID)
		require.NoError(t, err)
		e.clock.Advance(10 * time.Second)
	}
	_, err := pool.Refresh(ctx, u.ID)
	assertCode(t, err, apierr.CodeRateLimited)
	assert.Equal(t, 3, gen.Calls(), "denied call must not reach the provider")

	e.clock.Advance(ratelimit.DefaultWindow)
	_, err = pool.Discover(ctx, u.ID)
	require.NoError(t, err)
}

func TestDiscoverProviderFailures(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)

	_, err := newPool(e, &fakeGenerator{err: errors.New("timeout")}, e.limiter()).Discover(callerCtx(u.ID), u.ID)
	assertCode(t, err, apierr.CodeProviderUnavailable)

	_, err = newPool(e, &fakeGenerator{replies: []string{"I cannot help with that."}}, e.limiter()).Discover(callerCtx(u.ID), u.ID)
	assertCode(t, err, apierr.CodeProviderUnavailable)
}

func TestDiscoverGuards(t *testing.T) {
	e := newEnv(t)
	gen := &fakeGenerator{replies: []string{candidatesJSON("A")}}
	pool := newPool(e, gen, e.limiter())

	onboarding := e.seedUser(t, journey.StageOnboarding)
	_, err := pool.Discover(callerCtx(onboarding.ID), onboarding.ID)
	assertCode(t, err, apierr.CodePermissionDenied)
	assert.Contains(t, err.Error(), "DISCOVERY")

	// Past onboarding but the profile row is gone.
	noProfile := e.seedUser(t, journey.StageDiscovery)
	require.NoError(t, e.db.Where("user_id = ?", noProfile.ID).Delete(&types.Profile{}).Error)
	_, err = pool.Refresh(callerCtx(noProfile.ID), noProfile.ID)
	assertCode(t, err, apierr.CodeNotFound)
	assert.Zero(t, gen.Calls())
}

func TestRefreshExcludesPreviousRefresh(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	first := names("First", 6)
	second := append(append([]string{}, first[:3]...), names("Second", 5)...)
	gen := &fakeGenerator{replies: []string{candidatesJSON(first...), candidatesJSON(second...)}}
	pool := newPool(e, gen, e.limiter())
	ctx := callerCtx(u.ID)

	r1, err := pool.Refresh(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first, resultNames(r1))

	r2, err := pool.Refresh(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, names("Second", 5), resultNames(r2))
	for _, n := range resultNames(r2) {
		assert.NotContains(t, first, n)
	}

	mem, err := e.exclusion.Get(dbctx.Context{Ctx: ctx}, u.ID)
	require.NoError(t, err)
	assert.Len(t, mem.Names, len(second))
}

func TestRefreshBackfillsToThree(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageShortlisting)
	same := names("Same", 4)
	gen := &fakeGenerator{replies: []string{candidatesJSON(same...)}}
	pool := newPool(e, gen, e.limiter())
	ctx := callerCtx(u.ID)

	r1, err := pool.Refresh(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, r1.Universities, 4)

	// Shortlisted candidates are never backfilled.
	shortlisted := r1.Universities[0].ID
	require.NoError(t, e.db.Create(&types.ShortlistEntry{ID: uuid.New(), UserID: u.ID, UniversityID: shortlisted}).Error)

	r2, err := pool.Refresh(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, same[1:4], resultNames(r2))
}
