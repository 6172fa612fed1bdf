package auth

import (
	"errors"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/session"
	"github.com/newsphere/backend/internal/tokens"
)

const AccessTokenCookie = "access_token"

type Middleware struct {
	DB     *gorm.DB
	Tokens *tokens.Service
}

func (m *Middleware) identityFromCookie(c echo.Context) (session.Identity, error) {
	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return session.Identity{}, httperr.Auth("Authorization token missing")
	}
	claims, err := m.Tokens.Verify(cookie.Value)
	if err != nil || claims.Type != tokens.TypeAccess {
		return session.Identity{}, httperr.Auth("Invalid or expired token")
	}
	return session.Identity{UserID: claims.UserID, Role: claims.Role, Email: claims.Email}, nil
}

func attach(c echo.Context, id session.Identity) {
	req := c.Request()
	c.SetRequest(req.WithContext(session.IntoContext(req.Context(), id)))
}

// Authenticate requires a valid access cookie and attaches the identity to the
// request context.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.identityFromCookie(c)
		if err != nil {
			return err
		}
		attach(c, id)
		return next(c)
	}
}

// MaybeAuthenticate attaches the identity when a valid access cookie is
// present and lets the request through as a guest otherwise.
func (m *Middleware) MaybeAuthenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, err := m.identityFromCookie(c); err == nil {
			attach(c, id)
		}
		return next(c)
	}
}

// RequireRole gates the request on the caller's current role, read fresh from
// the store so a mid-session role change takes effect immediately. The
// token's embedded role is never trusted here.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := session.FromContext(c.Request().Context())
			if !ok {
				return httperr.Auth("Unauthorized: user not authenticated")
			}

			var user models.User
			err := m.DB.WithContext(c.Request().Context()).
				Select("role").First(&user, id.UserID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return httperr.Auth("Unauthorized: user not found")
				}
				return httperr.Internal(err)
			}
			if _, ok := allowed[user.Role]; !ok {
				return httperr.Forbidden("Access denied: insufficient permissions")
			}

			id.Role = user.Role
			attach(c, id)
			return next(c)
		}
	}
}
