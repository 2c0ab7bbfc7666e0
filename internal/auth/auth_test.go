package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, exp, err := tm.GenerateToken("u1", domain.RoleHR)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Second*5)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, domain.RoleHR, claims.Role)

	_, err = NewTokenManager("other-secret", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "battery staple"))

	// out of range costs fall back to the default
	hash, err = HashPassword("correct horse", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func newAuthApp(t *testing.T) (*fiber.App, *TokenManager, repository.DocumentStore) {
	t.Helper()
	tokens := NewTokenManager("secret", 5)
	users := repository.NewMemoryStores()[domain.KindUser]
	mw := NewAuthMiddleware(tokens, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.SendStatus(fe.Code)
			}
			return c.SendStatus(http.StatusUnauthorized)
		},
	})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(string(p.Actor.Role))
	})
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tokens, users
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddlewareUsesStoredRole(t *testing.T) {
	app, tokens, users := newAuthApp(t)
	ctx := context.Background()
	user, err := users.Insert(ctx, domain.Document{"name": "Ana", "email": "ana@example.com", "role": "employee", "active": true})
	require.NoError(t, err)

	// a token claiming admin does not outrank the stored role
	token, _, err := tokens.GenerateToken(user.ID(), domain.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(t, app, "/me", token))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/admin", token))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "garbage"))

	_, err = users.Update(ctx, user.ID(), domain.Document{"active": false})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", token))
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequireRole(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	app = fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		SetPrincipal(c, &Principal{Actor: domain.Actor{ID: "u1", Role: domain.RoleEmployee}})
		return c.Next()
	}, RequireRole(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
