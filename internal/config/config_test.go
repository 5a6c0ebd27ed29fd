package config_test

import (
	"log/slog"
	"testing"
	"time"

	"messageapp/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, config.Database{Driver: "sqlite", DSN: "messageapp.db"}, cfg.Database)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 10, cfg.SearchLimit)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_DSN", "host=db user=chat dbname=chat sslmode=disable")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("LOG_LEVEL", "debug")

	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestRejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "mongodb")

	_, err := config.FromViper(v)
	assert.ErrorContains(t, err, "unsupported DATABASE_DRIVER")
}
