package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultWatchInterval is how often Watch re-checks token expiry.
const DefaultWatchInterval = time.Minute

// Session holds the bearer token and user id of the logged-in user,
// mirrored to a file so that it survives restarts. An empty path keeps the
// session in memory only.
type Session struct {
	mu     sync.RWMutex
	path   string
	token  string
	userID uint
}

type sessionFile struct {
	Token  string `json:"token"`
	UserID uint   `json:"userId"`
}

// LoadSession restores the session stored at path. A missing file yields an
// empty session; an expired token is discarded.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var stored sessionFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	s.token, s.userID = stored.Token, stored.UserID

	if s.token != "" && s.Expired(time.Now()) {
		if err := s.Clear(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Set stores a freshly issued token in memory and on disk.
func (s *Session) Set(token string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.userID = token, userID
	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(sessionFile{Token: token, UserID: userID})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear logs out: both the in-memory and the persisted copy are wiped.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.userID = "", 0
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) UserID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// ExpiresAt reads the exp claim without verifying the signature; only the
// server can do that.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

// Expired reports whether there is no usable token at now.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return !ok || !now.Before(exp)
}

// Watch clears the session once its token expires. It returns when ctx is
// done. interval <= 0 means DefaultWatchInterval.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.LoggedIn() && s.Expired(now) {
				slog.Info("session expired, logging out")
				if err := s.Clear(); err != nil {
					slog.Warn("failed to clear expired session", "error", err)
				}
			}
		}
	}
}
