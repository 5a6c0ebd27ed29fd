package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"messageapp/internal/apperr"
	"messageapp/internal/middleware"
	"messageapp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyToken(token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newApp(verifier middleware.TokenVerifier) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(verifier), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"username": middleware.CurrentUser(c).Username})
	})
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body := map[string]string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthRequired(t *testing.T) {
	verifier := new(MockVerifier)
	app := newApp(verifier)

	verifier.On("VerifyToken", "good").Return(&models.User{ID: 1, Username: "alice"}, nil)
	verifier.On("VerifyToken", "stale").Return(nil, apperr.Auth(apperr.MsgInvalidToken))

	status, body := call(t, app, "Bearer good")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", body["username"])

	status, body = call(t, app, "Bearer stale")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, apperr.MsgInvalidToken, body["error"])

	for _, header := range []string{"", "good", "Basic good", "Bearer "} {
		status, body = call(t, app, header)
		assert.Equal(t, fiber.StatusUnauthorized, status, header)
		assert.NotEmpty(t, body["error"])
	}
	verifier.AssertNumberOfCalls(t, "VerifyToken", 2)
}

func TestAuthRequiredPassesStoreFailures(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("VerifyToken", "any").Return(nil, apperr.Internal(errors.New("db down")))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer any")
	resp, err := newApp(verifier).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
