package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
)

func newShortlist(e *env) ShortlistService {
	return NewShortlistService(e.db, e.log, e.users, e.unis, e.shortlist, e.locks, e.checklist, e.issuer)
}

func newChecklist(e *env) ChecklistService {
	return NewChecklistService(e.db, e.log, e.users, e.locks, e.checklist, e.issuer)
}

func (e *env) count(t *testing.T, model any, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestShortlistFirstAddAdvancesStage(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	a := e.seedUniversity(t, "Alpha University")
	b := e.seedUniversity(t, "Beta University")
	svc := newShortlist(e)
	ctx := callerCtx(u.ID)

	res, err := svc.Add(ctx, u.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, res.StageChange)
	assert.Equal(t, journey.StageShortlisting, res.Stage)
	assert.Contains(t, res.AccessToken, "SHORTLISTING")
	assert.Contains(t, res.AccessToken, "00000000-0000-0000-0000-00000000beef")
	assert.Equal(t, journey.StageShortlisting, e.stageOf(t, u.ID))

	res, err = svc.Add(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, res.StageChange)
	assert.EqualValues(t, 2, res.Count)

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha University", list[0].Name)
	assert.Equal(t, 35000, list[0].EstimatedTuition)
	assert.False(t, list[0].ShortlistedAt.IsZero())
}

func TestShortlistAddGuardedByStage(t *testing.T) {
	e := newEnv(t)
	uni := e.seedUniversity(t, "Alpha University")
	svc := newShortlist(e)

	for _, stage := range []journey.Stage{journey.StageOnboarding, journey.StageLocked, journey.StageApplication} {
		u := e.seedUser(t, stage)
		_, err := svc.Add(callerCtx(u.ID), u.ID, uni.ID)
		assertCode(t, err, apierr.CodePermissionDenied)
		assert.Zero(t, e.count(t, &types.ShortlistEntry{}, u.ID))
		assert.Equal(t, stage, e.stageOf(t, u.ID))
	}
}

func TestShortlistCapacityAndDuplicates(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	svc := newShortlist(e)
	ctx := callerCtx(u.ID)

	var unis []*types.University
	for i := 0; i < journey.MaxShortlist+1; i++ {
		unis = append(unis, e.seedUniversity(t, fmt.Sprintf("Capacity University %d", i)))
	}
	for _, uni := range unis[:journey.MaxShortlist] {
		_, err := svc.Add(ctx, u.ID, uni.ID)
		require.NoError(t, err)
	}

	_, err := svc.Add(ctx, u.ID, unis[journey.MaxShortlist].ID)
	assertCode(t, err, apierr.CodeConflict)
	assert.Contains(t, err.Error(), "maximum 7")
	assert.EqualValues(t, journey.MaxShortlist, e.count(t, &types.ShortlistEntry{}, u.ID))

	require.NoError(t, svc.Remove(ctx, u.ID, unis[0].ID))
	_, err = svc.Add(ctx, u.ID, unis[1].ID)
	assertCode(t, err, apierr.CodeConflict)
	assert.Contains(t, err.Error(), "already shortlisted")
	assert.EqualValues(t, journey.MaxShortlist-1, e.count(t, &types.ShortlistEntry{}, u.ID))

	assertCode(t, svc.Remove(ctx, u.ID, unis[0].ID), apierr.CodeNotFound)
	_, err = svc.Add(ctx, u.ID, uuid.New())
	assertCode(t, err, apierr.CodeNotFound)
}

func TestLockSnapshotAndSecondLock(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	gen := &fakeGenerator{replies: []string{candidatesJSON("Gamma University", "Delta University")}}
	pool := newPool(e, gen, e.limiter())
	svc := newShortlist(e)
	ctx := callerCtx(u.ID)

	found, err := pool.Discover(ctx, u.ID)
	require.NoError(t, err)
	gamma, delta := found.Universities[0], found.Universities[1]

	_, err = svc.Lock(ctx, u.ID, gamma.ID)
	assertCode(t, err, apierr.CodePermissionDenied)

	_, err = svc.Add(ctx, u.ID, gamma.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, u.ID, delta.ID)
	require.NoError(t, err)

	_, err = svc.Lock(ctx, u.ID, uuid.New())
	assertCode(t, err, apierr.CodeNotFound)

	lock, err := svc.Lock(ctx, u.ID, gamma.ID)
	require.NoError(t, err)
	assert.Equal(t, journey.StageLocked, lock.Stage)
	assert.NotEmpty(t, lock.AccessToken)

	// Later catalogue edits do not reach the snapshot.
	stored, err := e.unis.GetByID(dbctx.Context{Ctx: ctx}, gamma.ID)
	require.NoError(t, err)
	stored.Name = "Renamed"
	stored.TuitionMin = 1
	require.NoError(t, e.unis.Update(dbctx.Context{Ctx: ctx}, stored))

	view, err := svc.GetLock(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, view.Locked)
	assert.Equal(t, journey.Snapshot{
		ID:         gamma.ID.String(),
		Name:       gamma.Name,
		Country:    gamma.Country,
		Degree:     gamma.Degree,
		Field:      gamma.Field,
		TuitionMin: gamma.TuitionMin,
		TuitionMax: gamma.TuitionMax,
		Difficulty: string(gamma.Difficulty),
	}, *view.University)

	_, err = svc.Lock(ctx, u.ID, delta.ID)
	assertCode(t, err, apierr.CodeConflict)
	assert.Contains(t, err.Error(), "already have a locked university")
	assert.EqualValues(t, 1, e.count(t, &types.LockedChoice{}, u.ID))
}

func TestLockRequiresShortlist(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageShortlisting)
	uni := e.seedUniversity(t, "Elsewhere University")

	_, err := newShortlist(e).Lock(callerCtx(u.ID), u.ID, uni.ID)
	assertCode(t, err, apierr.CodeConflict)
	assert.Contains(t, err.Error(), "must be in shortlist")
	assert.Equal(t, journey.StageShortlisting, e.stageOf(t, u.ID))
}

func TestLockThenUnlockClearsChecklist(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, journey.StageDiscovery)
	uni := e.seedUniversity(t, "Omega University")
	svc := newShortlist(e)
	checklist := newChecklist(e)
	ctx := callerCtx(u.ID)

	_, err := svc.Unlock(ctx, u.ID)
	assertCode(t, err, apierr.CodePermissionDenied)

	_, err = svc.Add(ctx, u.ID, uni.ID)
	require.NoError(t, err)
	_, err = svc.Lock(ctx, u.ID, uni.ID)
	require.NoError(t, err)
	_, err = checklist.Initialize(ctx, u.ID)
	require.NoError(t, err)
	_, err = checklist.Complete(ctx, u.ID, "sop")
	require.NoError(t, err)
	require.Equal(t, journey.StageApplication, e.stageOf(t, u.ID))

	res, err := svc.Unlock(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.RemovedChecklistItems)
	assert.Equal(t, journey.StageShortlisting, res.Stage)
	assert.Equal(t, journey.StageShortlisting, e.stageOf(t, u.ID))
	assert.Zero(t, e.count(t, &types.ChecklistItem{}, u.ID))
	assert.Zero(t, e.count(t, &types.LockedChoice{}, u.ID))

	view, err := svc.GetLock(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, view.Locked)
	assert.Nil(t, view.University)

	// The shortlist survives, so the user can lock again.
	lock, err := svc.Lock(ctx, u.ID, uni.ID)
	require.NoError(t, err)
	assert.Equal(t, journey.StageLocked, lock.Stage)

	assert.Equal(t, []journey.Stage{
		journey.StageShortlisting, journey.StageLocked, journey.StageApplication,
		journey.StageShortlisting, journey.StageLocked,
	}, e.issuer.issued)
}
