package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/config"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, claims, err := tm.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	parsed, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = NewTokenManager("other", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken("admin")
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestCredentialStoreVerify(t *testing.T) {
	store, err := NewCredentialStore([]config.Credential{{Username: "admin", Password: "admin123"}}, bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, store.Verify("admin", "admin123"))
	assert.False(t, store.Verify("admin", "wrong"))
	assert.False(t, store.Verify("ghost", "admin123"))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	revs := NewMemoryRevocations()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	revs.now = func() time.Time { return now }

	require.NoError(t, revs.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, revs.Revoke(ctx, "expired", now.Add(-time.Hour)))

	revoked, err := revs.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = revs.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = revs.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func newProtectedApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/me", m.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(p.Username)
	})
	return app
}

func TestMiddlewareAcceptsBearerAndCookie(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	revs := NewMemoryRevocations()
	app := newProtectedApp(NewAuthMiddleware(tm, revs, "helpdesk_token"))
	token, claims, err := tm.GenerateToken("user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "helpdesk_token", Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, revs.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsMissingOrMalformed(t *testing.T) {
	app := newProtectedApp(NewAuthMiddleware(NewTokenManager("secret", time.Hour), NewMemoryRevocations(), "helpdesk_token"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
