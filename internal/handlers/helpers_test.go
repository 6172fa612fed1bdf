package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/config"
	"github.com/newsphere/backend/internal/hash"
	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/session"
	"github.com/newsphere/backend/internal/tokens"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newSessionService(db *gorm.DB) *session.Service {
	return &session.Service{
		DB:     db,
		Tokens: &tokens.Service{Secret: []byte("test-secret")},
	}
}

// newContext builds an echo context for a JSON request. Path params are given
// as alternating name/value pairs.
func newContext(t *testing.T, method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) >= 2 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

// asUser threads an authenticated identity through the request context, the
// same way the auth middleware does after verifying the access cookie.
func asUser(c echo.Context, user *models.User) {
	ctx := session.IntoContext(c.Request().Context(), session.Identity{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	})
	c.SetRequest(c.Request().WithContext(ctx))
}

func createUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	pw, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := &models.User{Name: name, Email: email, PasswordHash: pw, Role: role, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string, parentID *uint) *models.Category {
	t.Helper()
	cat := &models.Category{Name: name, Slug: slug, ParentID: parentID, IsActive: true}
	require.NoError(t, db.Create(cat).Error)
	return cat
}

func createArticle(t *testing.T, db *gorm.DB, title, slug, status string, authorID, categoryID uint) *models.Article {
	t.Helper()
	article := &models.Article{
		Title:    title,
		Slug:     slug,
		Content:  "content of " + title,
		Status:   status,
		AuthorID: authorID,
	}
	if categoryID != 0 {
		article.CategoryID = &categoryID
	}
	require.NoError(t, db.Create(article).Error)
	return article
}

func jsonUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func requireHTTPError(t *testing.T, err error, code int) *httperr.Error {
	t.Helper()
	var appErr *httperr.Error
	require.True(t, errors.As(err, &appErr), "expected *httperr.Error, got %v", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
