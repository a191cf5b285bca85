package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/auth"
	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const contextKeyIdentity = "identity"

// requireAuth verifies the Bearer access token and stores the resulting
// identity in the request context. The token is the only credential; there
// are no sessions.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		claims, err := s.tokens.Verify(token, auth.TokenAccess)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(contextKeyIdentity, domain.Identity{UserID: claims.UserID, Role: claims.Role})
		return next(c)
	}
}

// requireRole gates a route to the given roles. Must run after requireAuth.
func (s *Server) requireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := currentIdentity(c)
			if _, ok := allowed[identity.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func currentIdentity(c echo.Context) domain.Identity {
	identity, _ := c.Get(contextKeyIdentity).(domain.Identity)
	return identity
}
