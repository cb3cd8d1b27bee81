package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/user-service/pkg/util"
)

const subjectKey = "auth_subject"

// AuthMiddleware validates bearer tokens on protected routes. It is a pure
// gate: signature and expiry only, no user lookup. A token stays valid here
// even after its subject row was deleted; handlers that need the row decide
// what that means.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	userID, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(subjectKey, userID)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated user id.
func SubjectFromContext(c *fiber.Ctx) (int64, bool) {
	val := c.Locals(subjectKey)
	if val == nil {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}
