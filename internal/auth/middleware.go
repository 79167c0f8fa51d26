package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Email string
	Role  domain.Role
}

// AuthMiddleware reads bearer tokens and attaches principals. It never
// rejects a request by itself; route guards decide what is required.
type AuthMiddleware struct {
	tokens      *TokenManager
	logger      *zap.Logger
	publicPaths map[string]struct{}
}

// NewAuthMiddleware constructs middleware. Requests to publicPaths skip
// token parsing entirely.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger, publicPaths ...string) *AuthMiddleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[strings.TrimSuffix(p, "/")] = struct{}{}
	}
	return &AuthMiddleware{tokens: tokens, logger: logger, publicPaths: public}
}

// Handle attaches the principal when a valid bearer token is present.
// Missing, malformed or expired tokens leave the request anonymous.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if _, public := m.publicPaths[strings.TrimSuffix(c.Path(), "/")]; public {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Debug("ignoring invalid bearer token", zap.Error(err))
		return c.Next()
	}

	c.Locals(principalKey, &Principal{Email: claims.Subject, Role: claims.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
