package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/auth"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

const minPasswordLength = 8

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthTokens struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
	Stage        journey.Stage `json:"stage"`
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) error
	VerifyOTP(ctx context.Context, email, code string) (*AuthTokens, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueAccessToken(userID, sessionID uuid.UUID, stage journey.Stage) (string, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	SessionID string `json:"sid"`
	Stage     string `json:"stage"`
	jwt.RegisteredClaims
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	otpRepo       repos.EmailOTPRepo
	mailer        Mailer
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now     func() time.Time
	newCode func() (string, error)
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	otpRepo repos.EmailOTPRepo,
	mailer Mailer,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		otpRepo:       otpRepo,
		mailer:        mailer,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
		newCode:       generateOTPCode,
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apierr.Validation("invalid email address")
	}
	return email, nil
}

func (as *authService) Signup(ctx context.Context, in SignupInput) error {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return err
	}
	if len(in.Password) < minPasswordLength {
		return apierr.Validation("password must be at least %d characters", minPasswordLength)
	}
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" {
		return apierr.Validation("first_name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := as.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	now := as.now()
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Conflict("email already registered")
		}
		user := &types.User{
			ID:        uuid.New(),
			Email:     email,
			Password:  string(hash),
			FirstName: firstName,
			LastName:  lastName,
			Stage:     journey.StageOnboarding,
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflict("email already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return as.otpRepo.Create(dbc, &types.EmailOTP{
			UserID:    user.ID,
			CodeHash:  string(codeHash),
			ExpiresAt: now.Add(auth.OTPTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}
	return as.sendCode(ctx, email, code)
}

func (as *authService) sendCode(ctx context.Context, email, code string) error {
	err := as.mailer.Send(ctx, Email{
		To:      email,
		Subject: "Your UniBridge verification code",
		Text: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
			code, int(auth.OTPTTL.Minutes())),
	})
	if err != nil {
		as.log.Error("Verification email failed", "error", err)
		return apierr.ProviderUnavailable("verification email could not be sent; request a new code")
	}
	return nil
}

func (as *authService) VerifyOTP(ctx context.Context, rawEmail, code string) (*AuthTokens, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	invalid := apierr.Validation("invalid or expired verification code")

	var tokens *AuthTokens
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, err := as.userRepo.GetByEmail(dbc, email)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return invalid
		}
		otp, err := as.otpRepo.Latest(dbc, user.ID)
		if err != nil {
			return fmt.Errorf("load otp: %w", err)
		}
		now := as.now()
		if !otp.Usable(now) || bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(strings.TrimSpace(code))) != nil {
			return invalid
		}
		if err := as.otpRepo.MarkConsumed(dbc, otp.ID, now); err != nil {
			return fmt.Errorf("consume otp: %w", err)
		}
		if err := as.userRepo.Activate(dbc, user.ID); err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		tokens, err = as.createSession(dbc, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (as *authService) ResendOTP(ctx context.Context, rawEmail string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}
	code, err := as.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, err := as.userRepo.GetByEmail(dbc, email)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}
		if user.IsActive {
			return apierr.Conflict("user is already verified")
		}
		// Serializes concurrent resends for the same user.
		if _, err := as.userRepo.LockByID(dbc, user.ID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		now := as.now()
		prev, err := as.otpRepo.Latest(dbc, user.ID)
		if err != nil {
			return fmt.Errorf("load otp: %w", err)
		}
		if prev != nil && now.Sub(prev.CreatedAt) < auth.OTPResendInterval {
			return apierr.RateLimited("please wait before requesting a new code")
		}
		return as.otpRepo.Create(dbc, &types.EmailOTP{
			UserID:    user.ID,
			CodeHash:  string(codeHash),
			ExpiresAt: now.Add(auth.OTPTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}
	return as.sendCode(ctx, email, code)
}

func (as *authService) Login(ctx context.Context, rawEmail, password string) (*AuthTokens, error) {
	bad := apierr.Unauthorized("invalid email or password")
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, bad
	}
	user, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, bad
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, bad
	}
	if !user.IsActive {
		return nil, apierr.PermissionDenied("email not verified")
	}

	var tokens *AuthTokens
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tokens, err = as.createSession(dbctx.Context{Ctx: ctx, Tx: tx}, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Refresh rotates the refresh token. The old session is removed and a new one created.
func (as *authService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.Unauthorized("refresh token required")
	}
	var tokens *AuthTokens
	expired := false
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(found) == 0 {
			return apierr.Unauthorized("invalid refresh token")
		}
		existing := found[0]
		if existing.ExpiresAt.Before(as.now()) {
			if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
				return fmt.Errorf("delete expired session: %w", err)
			}
			expired = true
			return nil
		}
		user, err := as.userRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return apierr.Unauthorized("invalid refresh token")
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("delete old session: %w", err)
		}
		tokens, err = as.createSession(dbc, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, apierr.Unauthorized("refresh token expired")
	}
	return tokens, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	if err := as.userTokenRepo.FullDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (as *authService) createSession(dbc dbctx.Context, user *types.User) (*AuthTokens, error) {
	now := as.now()
	session := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{session}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	access, err := as.IssueAccessToken(user.ID, session.ID, user.Stage)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
		Stage:        user.Stage,
	}, nil
}

func (as *authService) IssueAccessToken(userID, sessionID uuid.UUID, stage journey.Stage) (string, error) {
	now := as.now()
	claims := JWTClaims{
		SessionID: sessionID.String(),
		Stage:     string(stage),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates tokenString and attaches the caller to ctx. Tokens of a
// logged-out session are rejected.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, fmt.Errorf("invalid session id in token: %w", err)
	}
	live, err := as.userTokenRepo.SessionExists(dbctx.Context{Ctx: ctx}, sessionID, userID)
	if err != nil {
		as.log.Warn("Session lookup failed", "error", err)
		return ctx, fmt.Errorf("session lookup failed: %w", err)
	}
	if !live {
		return ctx, fmt.Errorf("session has been logged out")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
		Stage:       claims.Stage,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < auth.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", auth.OTPLength, n.Int64()), nil
}
