package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/repository"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User    *domain.User
	Session *domain.Session
}

// SessionValidator checks an opaque session token and returns the live session.
// Implemented by service.SessionService.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.Session, error)
}

// SessionMiddleware validates bearer session tokens and loads principals.
type SessionMiddleware struct {
	sessions SessionValidator
	users    repository.UserRepository
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions SessionValidator, users repository.UserRepository) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, users: users}
}

// Handle enforces authentication for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	session, err := m.sessions.Validate(c.Context(), parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired session")
	}

	user, err := m.users.GetByID(c.Context(), session.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Session: session})
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
