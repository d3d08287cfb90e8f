package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"clinicdesk/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy"

func newTestApp(m Middleware) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", m.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendString(ActorID(c))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	m := New(config.Config{AuthJWTSecret: testSecret})
	valid, err := m.IssueToken("actor-1", time.Hour)
	require.NoError(t, err)
	expired, err := m.IssueToken("actor-1", -time.Hour)
	require.NoError(t, err)

	other := New(config.Config{AuthJWTSecret: "another-secret"})
	foreign, err := other.IssueToken("actor-1", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", target: "/whoami", header: "Bearer " + valid, wantStatus: fiber.StatusOK, wantBody: "actor-1"},
		{name: "query token", target: "/whoami?token=" + valid, wantStatus: fiber.StatusOK, wantBody: "actor-1"},
		{name: "missing token", target: "/whoami", wantStatus: fiber.StatusUnauthorized},
		{name: "expired token", target: "/whoami", header: "Bearer " + expired, wantStatus: fiber.StatusUnauthorized},
		{name: "wrong secret", target: "/whoami", header: "Bearer " + foreign, wantStatus: fiber.StatusUnauthorized},
		{name: "no subject", target: "/whoami", header: "Bearer " + noSubject, wantStatus: fiber.StatusUnauthorized},
		{name: "garbage", target: "/whoami", header: "Bearer not-a-jwt", wantStatus: fiber.StatusUnauthorized},
	}

	app := newTestApp(m)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	m := New(config.Config{AuthJWTSecret: testSecret})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "actor-1"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.Error(t, err)
}

func TestUnconfiguredSecret(t *testing.T) {
	m := New(config.Config{})

	_, err := m.IssueToken("actor-1", time.Hour)
	assert.Error(t, err)

	_, err = m.ParseToken("anything")
	assert.Error(t, err)
}
