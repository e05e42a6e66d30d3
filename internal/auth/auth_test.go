package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository/memrepo"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3nha-forte", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3nha-forte"))
	assert.Error(t, ComparePassword(hash, "errada"))
}

func TestTokenExpiryIsSessionExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC))
	tm := NewTokenManager("secret", 60, clock)

	token, exp, err := tm.GenerateToken("p1", domain.RoleChefe)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), exp)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.Subject)
	assert.Equal(t, domain.RoleChefe, claims.Role)

	clock.Advance(61 * time.Minute)
	_, err = tm.ParseToken(token)
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeSessionExpired, errorutil.ToDomainError(err).Code)
	assert.True(t, errorutil.IsSessionExpired(err))
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("a", 5, nil).GenerateToken("p1", domain.RoleGeral)
	require.NoError(t, err)
	_, err = NewTokenManager("b", 5, nil).ParseToken(token)
	assert.Equal(t, errorutil.CodeUnauthorized, errorutil.ToDomainError(err).Code)
}

func newApp(t *testing.T) (*fiber.App, *TokenManager, domain.Profile) {
	t.Helper()
	store := memrepo.New(nil, nil)
	p := domain.Profile{Nome: "Chefe", Role: domain.RoleChefe}
	require.NoError(t, store.Users().Create(context.Background(), &domain.Account{Email: "c@x.com", PasswordHash: "h"}, &p))

	tm := NewTokenManager("secret", 60, nil)
	mw := NewAuthMiddleware(tm, store.Users())
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := errorutil.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		pr, _ := PrincipalFromContext(c)
		return c.SendString(pr.Profile.Nome)
	})
	app.Get("/geral", mw.Handle, RequireRole(domain.RoleGeral), func(c *fiber.Ctx) error { return c.SendStatus(204) })
	return app, tm, p
}

func TestMiddleware(t *testing.T) {
	app, tm, p := newApp(t)
	token, _, err := tm.GenerateToken(p.ID, p.Role)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", 401},
		{"bad scheme", "/me", "Basic abc", 401},
		{"ok", "/me", "Bearer " + token, 200},
		{"forbidden role", "/geral", "Bearer " + token, 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	ghost, _, err := tm.GenerateToken("deleted-profile", domain.RoleChefe)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+ghost)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
