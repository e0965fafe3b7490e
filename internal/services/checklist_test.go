package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
)

// lockedUser returns a user in LOCKED holding a lock on a fresh university.
func (e *env) lockedUser(t *testing.T, name string) *types.User {
	t.Helper()
	u := e.seedUser(t, journey.StageShortlisting)
	uni := e.seedUniversity(t, name)
	svc := newShortlist(e)
	_, err := svc.Add(callerCtx(u.ID), u.ID, uni.ID)
	require.NoError(t, err)
	_, err = svc.Lock(callerCtx(u.ID), u.ID, uni.ID)
	require.NoError(t, err)
	e.issuer.issued = nil
	return u
}

func itemByName(items []*types.ChecklistItem, name string) *types.ChecklistItem {
	for _, it := range items {
		if it.ItemName == name {
			return it
		}
	}
	return nil
}

func TestChecklistInitializeIsIdempotent(t *testing.T) {
	e := newEnv(t)
	u := e.lockedUser(t, "Idempotent University")
	svc := newChecklist(e)
	ctx := callerCtx(u.ID)

	first, err := svc.Initialize(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.Len(t, first.Items, 4)

	second, err := svc.Initialize(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Len(t, second.Items, 4)
	assert.EqualValues(t, 4, e.count(t, &types.ChecklistItem{}, u.ID))

	for _, name := range journey.DefaultChecklist {
		it := itemByName(second.Items, name)
		require.NotNil(t, it, name)
		assert.Equal(t, journey.ChecklistPending, it.Status)
	}
}

func TestChecklistRequiresLock(t *testing.T) {
	e := newEnv(t)
	svc := newChecklist(e)

	u := e.seedUser(t, journey.StageShortlisting)
	_, err := svc.Initialize(callerCtx(u.ID), u.ID)
	assertCode(t, err, apierr.CodePermissionDenied)
	_, err = svc.List(callerCtx(u.ID), u.ID)
	assertCode(t, err, apierr.CodePermissionDenied)

	// A LOCKED stage without a lock row is reported as missing.
	orphan := e.seedUser(t, journey.StageLocked)
	_, err = svc.Initialize(callerCtx(orphan.ID), orphan.ID)
	assertCode(t, err, apierr.CodeNotFound)
}

func TestChecklistSubmitStartsApplication(t *testing.T) {
	e := newEnv(t)
	u := e.lockedUser(t, "Submit University")
	svc := newChecklist(e)
	ctx := callerCtx(u.ID)

	created, err := svc.Initialize(ctx, u.ID)
	require.NoError(t, err)
	sop := itemByName(created.Items, "SOP")
	lor := itemByName(created.Items, "LOR")

	notes := "second draft sent to mentor"
	res, err := svc.SetStatus(ctx, u.ID, sop.ID, "submitted", &notes)
	require.NoError(t, err)
	require.NotNil(t, res.StageChange)
	assert.Equal(t, journey.StageApplication, res.Stage)
	assert.Equal(t, journey.ChecklistSubmitted, res.Item.Status)
	assert.Equal(t, notes, res.Item.Notes)
	require.NotNil(t, res.Item.SubmittedAt)
	firstSubmit := *res.Item.SubmittedAt
	assert.Equal(t, journey.StageApplication, e.stageOf(t, u.ID))

	// Back to pending and submitted again: the timestamp is kept and the stage stays.
	_, err = svc.SetStatus(ctx, u.ID, sop.ID, "PENDING", nil)
	require.NoError(t, err)
	res, err = svc.SetStatus(ctx, u.ID, sop.ID, "SUBMITTED", nil)
	require.NoError(t, err)
	assert.Nil(t, res.StageChange)
	assert.Equal(t, notes, res.Item.Notes)
	assert.True(t, firstSubmit.Equal(*res.Item.SubmittedAt))

	_, err = svc.SetStatus(ctx, u.ID, lor.ID, "APPROVED", nil)
	require.NoError(t, err)

	view, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Submit University", view.University.Name)
	assert.Equal(t, journey.Progress{Total: 4, Pending: 2, Submitted: 1, Approved: 1, CompletionPercentage: 25}, view.Progress)
	assert.Equal(t, []journey.Stage{journey.StageApplication}, e.issuer.issued)
}

func TestChecklistSetStatusValidation(t *testing.T) {
	e := newEnv(t)
	u := e.lockedUser(t, "Validation University")
	other := e.lockedUser(t, "Other University")
	svc := newChecklist(e)

	created, err := svc.Initialize(callerCtx(u.ID), u.ID)
	require.NoError(t, err)
	theirs, err := svc.Initialize(callerCtx(other.ID), other.ID)
	require.NoError(t, err)

	_, err = svc.SetStatus(callerCtx(u.ID), u.ID, created.Items[0].ID, "DONE", nil)
	assertCode(t, err, apierr.CodeValidation)

	_, err = svc.SetStatus(callerCtx(u.ID), u.ID, theirs.Items[0].ID, "SUBMITTED", nil)
	assertCode(t, err, apierr.CodeNotFound)

	_, err = svc.SetStatus(callerCtx(u.ID), u.ID, uuid.New(), "SUBMITTED", nil)
	assertCode(t, err, apierr.CodeNotFound)
	assert.Equal(t, journey.StageLocked, e.stageOf(t, u.ID))
	assert.Equal(t, journey.StageLocked, e.stageOf(t, other.ID))
}

func TestChecklistCompleteByName(t *testing.T) {
	e := newEnv(t)
	u := e.lockedUser(t, "Complete University")
	svc := newChecklist(e)
	ctx := callerCtx(u.ID)

	// The checklist is created on demand.
	res, err := svc.Complete(ctx, u.ID, " sop ")
	require.NoError(t, err)
	assert.Equal(t, "SOP", res.Item.ItemName)
	assert.Equal(t, journey.ChecklistSubmitted, res.Item.Status)
	require.NotNil(t, res.StageChange)
	assert.Equal(t, journey.StageApplication, res.Stage)
	assert.EqualValues(t, 4, e.count(t, &types.ChecklistItem{}, u.ID))

	_, err = svc.Complete(ctx, u.ID, "passport")
	assertCode(t, err, apierr.CodeNotFound)
	_, err = svc.Complete(ctx, u.ID, "  ")
	assertCode(t, err, apierr.CodeValidation)

	// An approved item is left as it is.
	created, err := svc.Initialize(ctx, u.ID)
	require.NoError(t, err)
	lor := itemByName(created.Items, "LOR")
	_, err = svc.SetStatus(ctx, u.ID, lor.ID, "APPROVED", nil)
	require.NoError(t, err)
	res, err = svc.Complete(ctx, u.ID, "lor")
	require.NoError(t, err)
	assert.Equal(t, journey.ChecklistApproved, res.Item.Status)
	assert.Nil(t, res.StageChange)
}
