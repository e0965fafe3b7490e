package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/ctxutil"
)

func newAuth(t *testing.T, e *env, mailer Mailer) *authService {
	t.Helper()
	svc := NewAuthService(e.db, e.log, e.users, e.tokens, e.otps, mailer, "secret", time.Hour, 24*time.Hour).(*authService)
	svc.now = e.clock.Now
	svc.newCode = func() (string, error) { return "123456", nil }
	return svc
}

func signup(t *testing.T, svc *authService, email string) {
	t.Helper()
	require.NoError(t, svc.Signup(context.Background(), SignupInput{
		Email: email, Password: "correct horse", FirstName: "Ada", LastName: "Lovelace",
	}))
}

func TestSignupVerifyLogin(t *testing.T) {
	e := newEnv(t)
	mailer := &capturingMailer{}
	svc := newAuth(t, e, mailer)
	ctx := context.Background()

	signup(t, svc, " Ada@Example.com ")
	require.Equal(t, 1, mailer.count())
	assert.Equal(t, "ada@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Text, "123456")

	_, err := svc.Login(ctx, "ada@example.com", "correct horse")
	assertCode(t, err, apierr.CodePermissionDenied)

	_, err = svc.VerifyOTP(ctx, "ada@example.com", "000000")
	assertCode(t, err, apierr.CodeValidation)

	tokens, err := svc.VerifyOTP(ctx, "ada@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, journey.StageOnboarding, tokens.Stage)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, 3600, tokens.ExpiresIn)

	// A consumed code cannot be replayed.
	_, err = svc.VerifyOTP(ctx, "ada@example.com", "123456")
	assertCode(t, err, apierr.CodeValidation)

	_, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assertCode(t, err, apierr.CodeUnauthorized)

	tokens, err = svc.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)

	authed, err := svc.SetContextFromToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, string(journey.StageOnboarding), rd.Stage)

	require.NoError(t, svc.Logout(authed))
	_, err = svc.SetContextFromToken(ctx, tokens.AccessToken)
	assert.Error(t, err)
}

func TestSignupValidationAndDuplicates(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(t, e, &capturingMailer{})
	ctx := context.Background()

	err := svc.Signup(ctx, SignupInput{Email: "not-an-email", Password: "long enough", FirstName: "A"})
	assertCode(t, err, apierr.CodeValidation)
	err = svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "short", FirstName: "A"})
	assertCode(t, err, apierr.CodeValidation)
	err = svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "long enough"})
	assertCode(t, err, apierr.CodeValidation)

	signup(t, svc, "a@example.com")
	err = svc.Signup(ctx, SignupInput{Email: "A@example.com", Password: "long enough", FirstName: "A"})
	assertCode(t, err, apierr.CodeConflict)
}

func TestSignupMailFailureIsProviderUnavailable(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(t, e, &capturingMailer{err: errors.New("smtp down")})

	err := svc.Signup(context.Background(), SignupInput{Email: "m@example.com", Password: "long enough", FirstName: "M"})
	assertCode(t, err, apierr.CodeProviderUnavailable)

	// The account exists so the user can ask for a new code.
	var n int64
	require.NoError(t, e.db.Model(&types.User{}).Where("email = ?", "m@example.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestResendOTPInterval(t *testing.T) {
	e := newEnv(t)
	mailer := &capturingMailer{}
	svc := newAuth(t, e, mailer)
	ctx := context.Background()

	signup(t, svc, "r@example.com")
	assertCode(t, svc.ResendOTP(ctx, "r@example.com"), apierr.CodeRateLimited)
	assertCode(t, svc.ResendOTP(ctx, "nobody@example.com"), apierr.CodeNotFound)

	e.clock.Advance(61 * time.Second)
	require.NoError(t, svc.ResendOTP(ctx, "r@example.com"))
	assert.Equal(t, 2, mailer.count())

	// Codes expire after the TTL.
	e.clock.Advance(11 * time.Minute)
	_, err := svc.VerifyOTP(ctx, "r@example.com", "123456")
	assertCode(t, err, apierr.CodeValidation)

	e.clock.Advance(time.Minute)
	require.NoError(t, svc.ResendOTP(ctx, "r@example.com"))
	_, err = svc.VerifyOTP(ctx, "r@example.com", "123456")
	require.NoError(t, err)
	assertCode(t, svc.ResendOTP(ctx, "r@example.com"), apierr.CodeConflict)
}

func TestRefreshRotatesSession(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(t, e, &capturingMailer{})
	ctx := context.Background()

	signup(t, svc, "f@example.com")
	first, err := svc.VerifyOTP(ctx, "f@example.com", "123456")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assertCode(t, err, apierr.CodeUnauthorized)

	// The rotated-out session no longer authenticates.
	_, err = svc.SetContextFromToken(ctx, first.AccessToken)
	assert.Error(t, err)
	_, err = svc.SetContextFromToken(ctx, second.AccessToken)
	assert.NoError(t, err)
}

func TestRefreshExpired(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(t, e, &capturingMailer{})
	ctx := context.Background()

	signup(t, svc, "x@example.com")
	tokens, err := svc.VerifyOTP(ctx, "x@example.com", "123456")
	require.NoError(t, err)

	e.clock.Advance(25 * time.Hour)
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assertCode(t, err, apierr.CodeUnauthorized)
	assert.Contains(t, err.Error(), "expired")

	var n int64
	require.NoError(t, e.db.Unscoped().Model(&types.UserToken{}).Where("refresh_token = ?", tokens.RefreshToken).Count(&n).Error)
	assert.Zero(t, n)
}

func TestIssueAccessTokenCarriesStage(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(t, e, &capturingMailer{})
	ctx := context.Background()

	signup(t, svc, "s@example.com")
	tokens, err := svc.VerifyOTP(ctx, "s@example.com", "123456")
	require.NoError(t, err)
	authed, err := svc.SetContextFromToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)

	tok, err := svc.IssueAccessToken(rd.UserID, rd.SessionID, journey.StageDiscovery)
	require.NoError(t, err)
	authed, err = svc.SetContextFromToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, string(journey.StageDiscovery), ctxutil.GetRequestData(authed).Stage)
	assert.Equal(t, rd.SessionID, ctxutil.GetRequestData(authed).SessionID)

	e.clock.Advance(2 * time.Hour)
	_, err = svc.SetContextFromToken(ctx, tok)
	assert.Error(t, err)
}
