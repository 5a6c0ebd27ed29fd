package middleware

import (
	"log/slog"
	"strings"

	"messageapp/internal/apperr"
	"messageapp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// TokenVerifier resolves a bearer token to its user. *services.AuthService satisfies it.
type TokenVerifier interface {
	VerifyToken(token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// The resolved user is stored in the context; see CurrentUser.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "authorization header format must be 'Bearer <token>'")
		}

		user, err := verifier.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if apperr.Is(err, apperr.KindAuth) {
				slog.Debug("token rejected", "path", c.Path(), "error", err)
				return unauthorized(c, apperr.MsgInvalidToken)
			}
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

// CurrentUser returns the user authenticated by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
