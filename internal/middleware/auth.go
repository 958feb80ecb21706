package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cld-events/bidsim-api/internal/auth"
	"github.com/cld-events/bidsim-api/internal/models"
)

const identityKey = "identity"

// AuthMiddleware resolves the caller's identity from a Bearer token.
// Authentication is optional on every route: a missing, malformed or expired
// token makes the request anonymous rather than rejected. Handlers that care
// read the identity from locals and decide for themselves.
type AuthMiddleware struct {
	issuer *auth.Issuer
	logger *logrus.Logger
}

func NewAuthMiddleware(issuer *auth.Issuer, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		issuer: issuer,
		logger: logger,
	}
}

// OptionalIdentity verifies the Authorization header once per request and
// stashes the resulting identity, if any, in request locals.
func (a *AuthMiddleware) OptionalIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return c.Next()
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			return c.Next()
		}

		if identity := a.issuer.Verify(tokenString); identity != nil {
			c.Locals(identityKey, identity)
		} else {
			a.logger.WithField("path", c.Path()).Debug("Unverifiable bearer token, treating as anonymous")
		}

		return c.Next()
	}
}

// Identity returns the verified caller identity, or nil for anonymous requests.
func Identity(c *fiber.Ctx) *models.Identity {
	if identity, ok := c.Locals(identityKey).(*models.Identity); ok {
		return identity
	}
	return nil
}

// UserID returns the verified caller's subject id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	if identity := Identity(c); identity != nil {
		return identity.SubjectID
	}
	return ""
}
