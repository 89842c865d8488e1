package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/config"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/repository"
	"github.com/rosterhq/shift-roster/internal/validation"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// MaxPasswordLength is the longest accepted password in bytes.
const MaxPasswordLength = auth.MaxPasswordBytes

// AuthService coordinates registration, login and credential flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.TokenRevoker
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Revoker           auth.TokenRevoker
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		revoker:    deps.Revoker,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   time.Duration(cfg.PasswordResetTTLMinutes) * time.Minute,
		now:        time.Now,
	}
}

// RegisterInput describes a self-registration.
type RegisterInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	PreferredDays *int
}

// Register creates a doctor account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Token, error) {
	email := normalizeEmail(input.Email)
	problems := map[string]any{}
	if !validation.Email(email) {
		problems["email"] = "please enter a valid email"
	}
	if msg := passwordProblem(input.Password); msg != "" {
		problems["password"] = msg
	}
	if strings.TrimSpace(input.FirstName) == "" {
		problems["firstName"] = "first name is required"
	}
	if strings.TrimSpace(input.LastName) == "" {
		problems["lastName"] = "last name is required"
	}
	if input.PreferredDays != nil && (*input.PreferredDays < 0 || *input.PreferredDays > 7) {
		problems["preferredDays"] = "preferred days must be between 0 and 7"
	}
	if len(problems) > 0 {
		return nil, nil, apperrors.NewValidationError("invalid registration", problems)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:         email,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		PasswordHash:  hash,
		Role:          domain.RoleDoctor,
		Active:        true,
		PreferredDays: input.PreferredDays,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, nil, apperrors.MapError(err)
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Token, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if !user.Active {
		return nil, nil, apperrors.NewUnauthorized("account inactive")
	}
	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Logout revokes the caller's current token.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		s.logger.Error("token revocation failed", zap.String("jti", principal.TokenID), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, currentPassword, newPassword string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if msg := passwordProblem(newPassword); msg != "" {
		return apperrors.NewValidationError(msg, map[string]any{"newPassword": msg})
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return notFoundOr(err, "user", map[string]any{"user_id": actor.ID})
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return s.setPassword(ctx, user, newPassword)
}

// RequestPasswordReset stores a reset token for the email's owner. Unknown
// emails yield (nil, nil) so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, nil
	}

	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if msg := passwordProblem(newPassword); msg != "" {
		return apperrors.NewValidationError(msg, map[string]any{"newPassword": msg})
	}
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("reset token invalid", nil)
		}
		return apperrors.MapError(err)
	}
	if !token.Usable(s.now()) {
		return apperrors.NewValidationError("reset token expired or used", nil)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return notFoundOr(err, "user", map[string]any{"user_id": token.UserID})
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return apperrors.NewValidationError("reset token expired or used", nil)
		}
		return apperrors.MapError(err)
	}
	return s.setPassword(ctx, user, newPassword)
}

// EnsureAdmin creates the bootstrap administrator when no account holds the
// email. An existing account is returned untouched so that role or status
// changes made by an admin survive restarts.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role != domain.RoleAdmin || !user.Active {
			s.logger.Warn("bootstrap admin account exists but is not an active admin; leaving it unchanged",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)),
				zap.Bool("active", user.Active))
		}
		return user, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	if msg := passwordProblem(password); msg != "" {
		return nil, apperrors.NewValidationError("bootstrap admin "+msg, nil)
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	user = &domain.User{
		Email:        email,
		FirstName:    "Roster",
		LastName:     "Admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", user.ID))
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, plain string) error {
	hash, err := s.hashPassword(plain)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return notFoundOr(err, "user", map[string]any{"user_id": user.ID})
	}
	user.PasswordHash = hash
	return nil
}

func (s *AuthService) hashPassword(plain string) (string, error) {
	hash, err := auth.HashPassword(plain, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password must be at most 72 bytes long", nil)
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

func passwordProblem(password string) string {
	switch {
	case len(password) < MinPasswordLength:
		return "password must be at least 6 characters long"
	case len(password) > MaxPasswordLength:
		return "password must be at most 72 bytes long"
	}
	return ""
}
