package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every runtime setting of the server.
type Config struct {
	AppPort     string
	Database    Database
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	PageSize    int
	SearchLimit int
	RabbitMQURL string
	LogLevel    slog.Level
}

// Database selects the storage engine.
type Database struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// Load reads an optional .env file, then environment variables over defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "messageapp.db")
	v.SetDefault("JWT_SECRET", "secretkey")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("PAGE_SIZE", 20)
	v.SetDefault("SEARCH_LIMIT", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort: v.GetString("APP_PORT"),
		Database: Database{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		PageSize:    v.GetInt("PAGE_SIZE"),
		SearchLimit: v.GetInt("SEARCH_LIMIT"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.PageSize <= 0 || cfg.SearchLimit <= 0 {
		return Config{}, errors.New("PAGE_SIZE and SEARCH_LIMIT must be positive")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return cfg, nil
}
