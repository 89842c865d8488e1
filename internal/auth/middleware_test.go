package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/shift-roster/internal/domain"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

type stubUsers map[string]*domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevoker) Revoke(_ context.Context, id string, _ time.Time) error {
	s.revoked[id] = true
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

func newProtectedApp(tm *TokenManager, users UserGetter, revoker TokenRevoker) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	mw := NewAuthMiddleware(tm, users, revoker, nil)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("principal missing")
		}
		return c.SendString(p.User.ID)
	})
	app.Get("/assign", mw.Handle, Require(CapAssignShifts), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func bearer(t *testing.T, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	doctor := &domain.User{ID: "doc", Role: domain.RoleDoctor, Active: true}
	admin := &domain.User{ID: "admin", Role: domain.RoleAdmin, Active: true}
	inactive := &domain.User{ID: "gone", Role: domain.RoleDoctor, Active: false}
	users := stubUsers{doctor.ID: doctor, admin.ID: admin, inactive.ID: inactive}
	revoker := &stubRevoker{revoked: map[string]bool{}}
	app := newProtectedApp(tm, users, revoker)

	issue := func(u *domain.User) *domain.Token {
		token, err := tm.GenerateToken(u)
		require.NoError(t, err)
		return token
	}
	doctorToken := issue(doctor)
	revokedToken := issue(doctor)
	revoker.revoked[revokedToken.ID] = true

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "garbage", http.StatusUnauthorized},
		{"valid token", "/me", doctorToken.Value, http.StatusOK},
		{"revoked token", "/me", revokedToken.Value, http.StatusUnauthorized},
		{"inactive user", "/me", issue(inactive).Value, http.StatusUnauthorized},
		{"unknown user", "/me", issue(&domain.User{ID: "ghost", Role: domain.RoleDoctor}).Value, http.StatusUnauthorized},
		{"doctor lacks capability", "/assign", doctorToken.Value, http.StatusForbidden},
		{"admin has capability", "/assign", issue(admin).Value, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(bearer(t, tc.path, tc.token))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAuthMiddlewareFailsOpenOnRevocationOutage(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	doctor := &domain.User{ID: "doc", Role: domain.RoleDoctor, Active: true}
	revoker := &stubRevoker{revoked: map[string]bool{}, err: errors.New("redis down")}
	app := newProtectedApp(tm, stubUsers{doctor.ID: doctor}, revoker)

	token, err := tm.GenerateToken(doctor)
	require.NoError(t, err)

	resp, err := app.Test(bearer(t, "/me", token.Value))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
