package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/config"
	"github.com/rosterhq/shift-roster/internal/domain"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

func newTestAuthService() (*AuthService, *memUsers, *memResets, *memRevoker) {
	users := newMemUsers()
	resets := newMemResets()
	revoker := newMemRevoker()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              4,
	}, AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: resets,
		Revoker:           revoker,
	})
	return svc, users, resets, revoker
}

func TestRegisterCreatesDoctor(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAuthService()

	user, token, err := svc.Register(ctx, RegisterInput{
		Email:     " New.Doc@Roster.test ",
		Password:  "secret1",
		FirstName: "New",
		LastName:  "Doc",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, "new.doc@roster.test", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	_, _, err = svc.Register(ctx, RegisterInput{Email: "new.doc@roster.test", Password: "secret1", FirstName: "A", LastName: "B"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	days := 9

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:         "not-an-email",
		Password:      "123",
		PreferredDays: &days,
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	for _, field := range []string{"email", "password", "firstName", "lastName", "preferredDays"} {
		assert.Contains(t, domainErr.Details, field)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestAuthService()
	user, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: "secret1", FirstName: "D", LastName: "C"})
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "DOC@roster.test", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)

	_, _, err = svc.Login(ctx, "doc@roster.test", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, _, err = svc.Login(ctx, "nobody@roster.test", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	user.Active = false
	require.NoError(t, users.UpdateStatus(ctx, user))
	_, _, err = svc.Login(ctx, "doc@roster.test", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _, revoker := newTestAuthService()
	principal := &auth.Principal{
		User:      &domain.User{ID: "u1", Role: domain.RoleDoctor, Active: true},
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	require.NoError(t, svc.Logout(context.Background(), principal))
	revoked, err := revoker.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.True(t, apperrors.HasCode(svc.Logout(context.Background(), nil), apperrors.CodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAuthService()
	user, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: "secret1", FirstName: "D", LastName: "C"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, "wrong", "newsecret")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	err = svc.ChangePassword(ctx, user, "secret1", "abc")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	require.NoError(t, svc.ChangePassword(ctx, user, "secret1", "newsecret"))
	_, _, err = svc.Login(ctx, "doc@roster.test", "newsecret")
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAuthService()
	_, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: "secret1", FirstName: "D", LastName: "C"})
	require.NoError(t, err)

	missing, err := svc.RequestPasswordReset(ctx, "nobody@roster.test")
	require.NoError(t, err)
	assert.Nil(t, missing)

	token, err := svc.RequestPasswordReset(ctx, "doc@roster.test")
	require.NoError(t, err)
	require.NotNil(t, token)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "resetpw"))
	_, _, err = svc.Login(ctx, "doc@roster.test", "resetpw")
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset(ctx, token.Token, "another")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "reset tokens are single use")

	err = svc.ConfirmPasswordReset(ctx, "unknown", "another")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestPasswordResetExpiry(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAuthService()
	_, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: "secret1", FirstName: "D", LastName: "C"})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "doc@roster.test")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	err = svc.ConfirmPasswordReset(ctx, token.Token, "resetpw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestAuthService()

	admin, err := svc.EnsureAdmin(ctx, "Root@Roster.test", "rootpw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "root@roster.test", admin.Email)

	again, err := svc.EnsureAdmin(ctx, "root@roster.test", "rootpw")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	doc := users.add(domain.User{Email: "demoted@roster.test", Role: domain.RoleDoctor, Active: false})
	existing, err := svc.EnsureAdmin(ctx, "demoted@roster.test", "ignored")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, existing.ID)
	assert.Equal(t, domain.RoleDoctor, existing.Role, "an existing account keeps the role an admin gave it")
	assert.False(t, existing.Active)

	stored, err := users.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	_, err = svc.EnsureAdmin(ctx, "fresh@roster.test", "abc")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestPasswordsOverBcryptLimitAreRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAuthService()
	long := strings.Repeat("p", 80)

	_, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: long, FirstName: "D", LastName: "C"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	user, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: strings.Repeat("p", 72), FirstName: "D", LastName: "C"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, strings.Repeat("p", 72), long)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	token, err := svc.RequestPasswordReset(ctx, "doc@roster.test")
	require.NoError(t, err)
	err = svc.ConfirmPasswordReset(ctx, token.Token, long)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.EnsureAdmin(ctx, "root@roster.test", long)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestHashPasswordMapsBcryptLengthError(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	_, err := svc.hashPassword(strings.Repeat("p", 73))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestChangePasswordKeepsStatus(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestAuthService()
	user, _, err := svc.Register(ctx, RegisterInput{Email: "doc@roster.test", Password: "secret1", FirstName: "D", LastName: "C"})
	require.NoError(t, err)

	// Deactivated by an admin after the doctor's session loaded the user.
	deactivated := *user
	deactivated.Active = false
	require.NoError(t, users.UpdateStatus(ctx, &deactivated))

	require.NoError(t, svc.ChangePassword(ctx, user, "secret1", "newsecret"))
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "newsecret"))
}
