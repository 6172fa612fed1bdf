package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/events"
	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/logging"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/session"
	"github.com/newsphere/backend/internal/tokens"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Service
	Producer *events.Producer
	// Production toggles Secure + SameSite=None on the auth cookies.
	Production bool
}

// Both cookies share the refresh token's 7-day max-age; the access token's
// real validity is its 1-day signature expiry, which clients must rely on.
func (h *AuthHandler) newCookie(name, value string, maxAge time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.Production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: sameSite,
	}
}

func (h *AuthHandler) setAuthCookies(c echo.Context, pair *session.TokenPair) {
	c.SetCookie(h.newCookie(AccessTokenCookie, pair.Access, tokens.RefreshTTL))
	c.SetCookie(h.newCookie(RefreshTokenCookie, pair.Refresh, tokens.RefreshTTL))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(h.newCookie(AccessTokenCookie, "", -time.Second))
	c.SetCookie(h.newCookie(RefreshTokenCookie, "", -time.Second))
}

func (h *AuthHandler) publishUserEvent(c echo.Context, eventType string, user *models.User) {
	event := map[string]interface{}{
		"type":   eventType,
		"userID": user.ID,
		"email":  user.Email,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, fmt.Sprint(user.ID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err.Error())
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	user, pair, err := h.Sessions.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, pair)
	h.publishUserEvent(c, "user_registered", user)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	user, pair, err := h.Sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Same message and status for unknown email and wrong password.
		var appErr *httperr.Error
		if errors.As(err, &appErr) && appErr.Code == http.StatusUnauthorized {
			return httperr.BadRequest("Invalid credentials")
		}
		return err
	}

	h.setAuthCookies(c, pair)
	h.publishUserEvent(c, "user_logged_in", user)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    user,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return httperr.Auth("No refresh token")
	}

	_, pair, err := h.Sessions.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{"message": "Refreshed"})
}

// Logout always reports success: revoking the ledger record is best-effort
// and already-dead sessions are fine to log out again.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		h.Sessions.Logout(c.Request().Context(), cookie.Value)
	}
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := session.FromContext(c.Request().Context())
	if !ok {
		return httperr.Auth("Unauthorized: user not authenticated")
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).
		Select("id", "name", "email", "role", "created_at").
		First(&user, id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("User not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
