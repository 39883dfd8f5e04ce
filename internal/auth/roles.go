package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/domain"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// RequireRole ensures the authenticated user holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewDomainError("FORBIDDEN", "insufficient role", http.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// RequireDoctor restricts a route to doctor accounts.
func RequireDoctor() fiber.Handler {
	return RequireRole(domain.RoleDoctor)
}

// RequirePatient restricts a route to patient accounts.
func RequirePatient() fiber.Handler {
	return RequireRole(domain.RolePatient)
}
