package jwt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "freelance"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware(testSecret, testIssuer))
	app.Get("/me", func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals(LocalIsAdmin).(bool)
		return c.JSON(fiber.Map{
			"userId":  c.Locals(LocalUserID),
			"role":    c.Locals(LocalRole),
			"isAdmin": isAdmin,
		})
	})
	app.Post("/admin", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	return app
}

func token(t *testing.T, secret, issuer string, ttl time.Duration, sub uuid.UUID, role string) string {
	t.Helper()
	tok, err := NewGenerator(secret, issuer, ttl).Generate(context.Background(), sub, role)
	require.NoError(t, err)
	return tok
}

func TestMiddlewareSetsLocals(t *testing.T) {
	sub := uuid.New()
	tok := token(t, testSecret, testIssuer, time.Hour, sub, RoleFreelancer)

	for _, header := range []string{"Bearer " + tok, "bearer " + tok, tok} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		resp, err := newApp().Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, sub.String(), body["userId"])
		assert.Equal(t, RoleFreelancer, body["role"])
		assert.Equal(t, false, body["isAdmin"])
	}
}

func TestMiddlewareRejects(t *testing.T) {
	sub := uuid.New()
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "empty bearer", header: "Bearer "},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + token(t, "other", testIssuer, time.Hour, sub, RoleClient)},
		{name: "wrong issuer", header: "Bearer " + token(t, testSecret, "someone-else", time.Hour, sub, RoleClient)},
		{name: "expired", header: "Bearer " + token(t, testSecret, testIssuer, -time.Minute, sub, RoleClient)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, testSecret, testIssuer, time.Hour, uuid.New(), RoleClient))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, testSecret, testIssuer, time.Hour, uuid.New(), RoleAdmin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestParse(t *testing.T) {
	sub := uuid.New()
	claims, err := Parse(token(t, testSecret, testIssuer, time.Hour, sub, RoleAdmin), testSecret, "")
	require.NoError(t, err)
	assert.Equal(t, sub.String(), claims.Subject)
	assert.True(t, claims.IsAdmin)
}
