package services

import (
	"log/slog"
	"time"

	"messageapp/internal/pagination"
	"messageapp/pkg/rabbitmq"

	"golang.org/x/crypto/bcrypt"
)

// Config carries the settings shared by all services.
type Config struct {
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	PageSize    int
	SearchLimit int
}

func (c Config) withDefaults() Config {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.PageSize <= 0 {
		c.PageSize = pagination.DefaultPageSize
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 10
	}
	return c
}

// EventPublisher receives domain events after successful mutations.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishEvent(event rabbitmq.Event) error
}

// publish never fails the caller: a broken broker only costs the event.
func publish(events EventPublisher, event rabbitmq.Event) {
	if events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := events.PublishEvent(event); err != nil {
		slog.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
