package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/misd-it/misdesk/internal/domain"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller and its resolved
// permission set.
type Principal struct {
	Profile     *domain.Profile
	Permissions PermissionSet
}

// AuthMiddleware validates bearer tokens and resolves principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	resolver *Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, resolver *Resolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, resolver: resolver}
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

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	profile, perms := m.resolver.Resolve(c.Context(), claims.ProfileID)
	if profile == nil {
		return apperrors.NewUnauthorized("unknown principal")
	}

	c.Locals(principalKey, &Principal{Profile: profile, Permissions: perms})
	return c.Next()
}

// Require ensures the principal holds the given permission.
func Require(perm Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.Permissions.Has(perm) {
			return apperrors.NewForbidden("missing permission: " + string(perm))
		}
		return c.Next()
	}
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
