package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/observability"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
)

// StageChange is returned by operations that moved the caller to another stage.
// AccessToken carries the new stage and the caller's session.
type StageChange struct {
	From        journey.Stage `json:"-"`
	Stage       journey.Stage `json:"stage"`
	AccessToken string        `json:"access_token"`
}

type TokenIssuer interface {
	IssueAccessToken(userID, sessionID uuid.UUID, stage journey.Stage) (string, error)
}

// lockAndGuard row-locks the caller and checks the authoritative stage. dbc must hold a transaction.
func lockAndGuard(dbc dbctx.Context, users repos.UserRepo, userID uuid.UUID, op string, allowed journey.Set) (*types.User, error) {
	u, err := users.LockByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user not found")
	}
	if err := journey.Guard(op, u.Stage, allowed); err != nil {
		return nil, err
	}
	return u, nil
}

// loadAndGuard is lockAndGuard for read-only operations.
func loadAndGuard(dbc dbctx.Context, users repos.UserRepo, userID uuid.UUID, op string, allowed journey.Set) (*types.User, error) {
	u, err := users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user not found")
	}
	if err := journey.Guard(op, u.Stage, allowed); err != nil {
		return nil, err
	}
	return u, nil
}

// advance applies action to u within the caller's transaction. It returns nil when the
// action is not a transition from u's stage.
func advance(dbc dbctx.Context, users repos.UserRepo, u *types.User, action journey.Action) (*StageChange, error) {
	to, ok := journey.Next(u.Stage, action)
	if !ok {
		return nil, nil
	}
	if err := users.UpdateStage(dbc, u.ID, to); err != nil {
		return nil, fmt.Errorf("update stage: %w", err)
	}
	change := &StageChange{From: u.Stage, Stage: to}
	u.Stage = to
	return change, nil
}

// finishStageChange runs after commit: it records the transition and signs a token for the new stage.
func finishStageChange(ctx context.Context, tokens TokenIssuer, userID uuid.UUID, change *StageChange) (*StageChange, error) {
	if change == nil {
		return nil, nil
	}
	observability.Current().IncStageTransition(string(change.From), string(change.Stage))
	if tokens == nil {
		return change, nil
	}
	var sessionID uuid.UUID
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		sessionID = rd.SessionID
	}
	tok, err := tokens.IssueAccessToken(userID, sessionID, change.Stage)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	change.AccessToken = tok
	return change, nil
}
