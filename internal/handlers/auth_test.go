package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/backend/internal/models"
)

func newAuthHandler(t *testing.T) (*AuthHandler, func() []models.RefreshToken) {
	t.Helper()
	db := newTestDB(t)
	h := &AuthHandler{DB: db, Sessions: newSessionService(db)}
	ledger := func() []models.RefreshToken {
		var rows []models.RefreshToken
		require.NoError(t, db.Find(&rows).Error)
		return rows
	}
	return h, ledger
}

func TestAuthRegisterSetsCookies(t *testing.T) {
	h, ledger := newAuthHandler(t)

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	access := findCookie(t, rec, AccessTokenCookie)
	refresh := findCookie(t, rec, RefreshTokenCookie)
	require.NotEmpty(t, access.Value)
	require.NotEmpty(t, refresh.Value)
	require.NotEqual(t, access.Value, refresh.Value)
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	require.False(t, access.Secure)
	require.Equal(t, http.SameSiteLaxMode, access.SameSite)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "user")
	require.NotContains(t, string(body["user"]), "password")

	rows := ledger()
	require.Len(t, rows, 1)
	require.False(t, rows[0].Revoked)
}

func TestAuthRegisterProductionCookies(t *testing.T) {
	h, _ := newAuthHandler(t)
	h.Production = true

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Register(c))

	access := findCookie(t, rec, AccessTokenCookie)
	require.True(t, access.Secure)
	require.Equal(t, http.SameSiteNoneMode, access.SameSite)
}

func TestAuthRegisterValidationErrors(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, _ := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"A","email":"bad","password":"x"}`)
	appErr := requireHTTPError(t, h.Register(c), http.StatusBadRequest)
	require.Contains(t, appErr.Fields, "name")
	require.Contains(t, appErr.Fields, "email")
	require.Contains(t, appErr.Fields, "password")
}

func TestAuthLoginWrongCredentials(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, _ := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Register(c))

	c, _ = newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"test@example.com","password":"wrong"}`)
	wrongPassword := requireHTTPError(t, h.Login(c), http.StatusBadRequest)

	c, _ = newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"password"}`)
	unknownEmail := requireHTTPError(t, h.Login(c), http.StatusBadRequest)

	require.Equal(t, wrongPassword.Message, unknownEmail.Message)
}

func TestAuthLoginSuccess(t *testing.T) {
	h, ledger := newAuthHandler(t)

	c, _ := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Register(c))

	c, rec := newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	findCookie(t, rec, AccessTokenCookie)
	findCookie(t, rec, RefreshTokenCookie)

	require.Len(t, ledger(), 2)
}

func TestAuthRefreshRotatesCookies(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Register(c))
	oldRefresh := findCookie(t, rec, RefreshTokenCookie)

	c, rec = newContext(t, http.MethodPost, "/api/auth/refresh", "")
	c.Request().AddCookie(oldRefresh)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	newRefresh := findCookie(t, rec, RefreshTokenCookie)
	require.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// The rotated-out token no longer refreshes.
	c, _ = newContext(t, http.MethodPost, "/api/auth/refresh", "")
	c.Request().AddCookie(oldRefresh)
	requireHTTPError(t, h.Refresh(c), http.StatusUnauthorized)
}

func TestAuthRefreshWithoutCookie(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, _ := newContext(t, http.MethodPost, "/api/auth/refresh", "")
	requireHTTPError(t, h.Refresh(c), http.StatusUnauthorized)
}

func TestAuthLogout(t *testing.T) {
	h, ledger := newAuthHandler(t)

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"password"}`)
	require.NoError(t, h.Register(c))
	refresh := findCookie(t, rec, RefreshTokenCookie)

	c, rec = newContext(t, http.MethodPost, "/api/auth/logout", "")
	c.Request().AddCookie(refresh)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	access := findCookie(t, rec, AccessTokenCookie)
	require.Empty(t, access.Value)
	require.Negative(t, access.MaxAge)

	rows := ledger()
	require.Len(t, rows, 1)
	require.True(t, rows[0].Revoked)

	// Without a cookie, and with a stale one, logout still succeeds.
	c, rec = newContext(t, http.MethodPost, "/api/auth/logout", "")
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(t, http.MethodPost, "/api/auth/logout", "")
	c.Request().AddCookie(refresh)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMe(t *testing.T) {
	h, _ := newAuthHandler(t)
	user := createUser(t, h.DB, "Test User", "test@example.com", models.RoleUser)

	c, rec := newContext(t, http.MethodGet, "/api/auth/me", "")
	asUser(c, user)
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "test@example.com")

	c, _ = newContext(t, http.MethodGet, "/api/auth/me", "")
	requireHTTPError(t, h.Me(c), http.StatusUnauthorized)
}
