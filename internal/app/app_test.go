package app_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"messageapp/internal/app"
	"messageapp/internal/config"
	"messageapp/internal/database"
	"messageapp/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Open(database.InMemory())
	require.NoError(t, err)
	fiberApp, _ := app.New(db, services.Config{JWTSecret: "test"}, nil, app.Options{DisableRequestLog: true})
	return fiberApp
}

func get(t *testing.T, fiberApp *fiber.App, path string) (int, map[string]string) {
	t.Helper()
	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body := map[string]string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	status, body := get(t, newApp(t), "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"])
	assert.NoError(t, err)
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	status, body := get(t, newApp(t), "/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestServiceConfig(t *testing.T) {
	cfg := config.Config{
		JWTSecret:   "s",
		TokenTTL:    time.Hour,
		BcryptCost:  5,
		PageSize:    7,
		SearchLimit: 3,
	}
	assert.Equal(t, services.Config{
		JWTSecret:   "s",
		TokenTTL:    time.Hour,
		BcryptCost:  5,
		PageSize:    7,
		SearchLimit: 3,
	}, app.ServiceConfig(cfg))
}
