package server

import (
	"strings"

	"forum/internal/models"
	"forum/internal/policy"

	"github.com/gofiber/fiber/v2"
)

const (
	identityLocal = "identity"
	// AccessTokenCookie carries the JWT for browser clients.
	AccessTokenCookie = "access_token"
)

// tokenFrom reads the bearer token, falling back to the access_token cookie.
func tokenFrom(c *fiber.Ctx) string {
	if parts := strings.Fields(c.Get(fiber.HeaderAuthorization)); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return c.Cookies(AccessTokenCookie)
}

// IdentityMiddleware resolves the caller on every request. A missing, invalid
// or revoked token yields the anonymous identity; it never rejects a request.
func (s *Server) IdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := s.auth.Identify(c.UserContext(), tokenFrom(c))
		c.Locals(identityLocal, identity)
		if identity.Authenticated() {
			c.Locals("userID", identity.UserID)
		}
		return c.Next()
	}
}

// identityOf returns the identity resolved by IdentityMiddleware.
func identityOf(c *fiber.Ctx) policy.Identity {
	if identity, ok := c.Locals(identityLocal).(policy.Identity); ok {
		return identity
	}
	return policy.Anonymous()
}

// AuthRequired rejects anonymous callers with 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !identityOf(c).Authenticated() {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authentication required"))
		}
		return c.Next()
	}
}

// ProfileRequired applies the profile gate. Profile existence is read from
// the store on every request because creating the profile changes the
// answer mid-session.
func (s *Server) ProfileRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := identityOf(c)
		hasProfile, err := s.profiles.HasProfile(c.UserContext(), identity)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		d := policy.ProfileGate(policy.StateOf(identity, hasProfile), gatePath(c.Path()))
		if d.Allowed() {
			return c.Next()
		}
		return c.Redirect(d.Location, fiber.StatusFound)
	}
}

// gatePath normalizes the request path to the slash-terminated form routes
// are addressed by.
func gatePath(path string) string {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

// SubcategoryRequired answers 404 for an unknown subcategory before any gate runs.
func (s *Server) SubcategoryRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := s.categories.Subcategory(c.UserContext(), c.Params("categorySlug"), c.Params("subcategorySlug")); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}
