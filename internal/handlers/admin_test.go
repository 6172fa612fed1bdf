package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/backend/internal/models"
)

func TestAdminCreateUser(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}

	c, rec := newContext(t, http.MethodPost, "/api/admin/users",
		`{"name":"New Editor","email":"editor@example.com","password":"password","role":"EDITOR"}`)
	require.NoError(t, h.CreateUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "editor@example.com").First(&user).Error)
	require.Equal(t, models.RoleEditor, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "password", user.PasswordHash)
}

func TestAdminCreateUserDefaultsRole(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}

	c, _ := newContext(t, http.MethodPost, "/api/admin/users",
		`{"name":"Plain User","email":"plain@example.com","password":"password"}`)
	require.NoError(t, h.CreateUser(c))

	var user models.User
	require.NoError(t, db.Where("email = ?", "plain@example.com").First(&user).Error)
	require.Equal(t, models.RoleUser, user.Role)
}

func TestAdminCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}

	c, _ := newContext(t, http.MethodPost, "/api/admin/users",
		`{"name":"X","email":"bad","password":"x","role":"SUPERUSER"}`)
	appErr := requireHTTPError(t, h.CreateUser(c), http.StatusBadRequest)
	require.Contains(t, appErr.Fields, "name")
	require.Contains(t, appErr.Fields, "email")
	require.Contains(t, appErr.Fields, "password")
	require.Contains(t, appErr.Fields, "role")
}

func TestAdminCreateUserDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	createUser(t, db, "Existing", "taken@example.com", models.RoleUser)

	c, _ := newContext(t, http.MethodPost, "/api/admin/users",
		`{"name":"Someone","email":"taken@example.com","password":"password"}`)
	requireHTTPError(t, h.CreateUser(c), http.StatusConflict)
}

func TestAdminListUsersSearch(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	createUser(t, db, "Alice Writer", "alice@example.com", models.RoleReporter)
	createUser(t, db, "Bob Editor", "bob@example.com", models.RoleEditor)

	c, rec := newContext(t, http.MethodGet, "/api/admin/users?search=alice", "")
	require.NoError(t, h.ListUsers(c))

	var body struct {
		Users      []models.User `json:"users"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Users, 1)
	require.EqualValues(t, 1, body.Pagination.Total)
	require.Equal(t, "alice@example.com", body.Users[0].Email)
}

func TestAdminUpdateUserRole(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	user := createUser(t, db, "Promoted", "promoted@example.com", models.RoleUser)

	c, rec := newContext(t, http.MethodPut, "/", `{"role":"REPORTER"}`, "userId", jsonUint(user.ID))
	require.NoError(t, h.UpdateUserRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	require.Equal(t, models.RoleReporter, updated.Role)

	c, _ = newContext(t, http.MethodPut, "/", `{"role":"OVERLORD"}`, "userId", jsonUint(user.ID))
	requireHTTPError(t, h.UpdateUserRole(c), http.StatusBadRequest)

	c, _ = newContext(t, http.MethodPut, "/", `{"role":"EDITOR"}`, "userId", "9999")
	requireHTTPError(t, h.UpdateUserRole(c), http.StatusNotFound)
}

func TestAdminToggleUserActive(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	user := createUser(t, db, "Flaky", "flaky@example.com", models.RoleUser)

	c, rec := newContext(t, http.MethodPatch, "/", "", "userId", jsonUint(user.ID))
	require.NoError(t, h.ToggleUserActive(c))
	require.Contains(t, rec.Body.String(), "User deactivated")

	var row models.User
	require.NoError(t, db.First(&row, user.ID).Error)
	require.False(t, row.IsActive)

	c, rec = newContext(t, http.MethodPatch, "/", "", "userId", jsonUint(user.ID))
	require.NoError(t, h.ToggleUserActive(c))
	require.Contains(t, rec.Body.String(), "User activated")
}

func TestAdminListArticlesIncludesDraftsAndDeleted(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	reporter := createUser(t, db, "Reporter", "reporter@example.com", models.RoleReporter)
	createArticle(t, db, "Published", "published", models.StatusPublished, reporter.ID, 0)
	createArticle(t, db, "Draft", "draft", models.StatusDraft, reporter.ID, 0)
	gone := createArticle(t, db, "Gone", "gone", models.StatusArchived, reporter.ID, 0)
	require.NoError(t, db.Model(gone).Update("deleted_at", db.NowFunc()).Error)

	c, rec := newContext(t, http.MethodGet, "/api/admin/articles", "")
	require.NoError(t, h.ListArticles(c))

	var body struct {
		Articles            []models.Article `json:"articles"`
		Total               int64            `json:"total"`
		PublishedTodayCount int64            `json:"publishedTodayCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Articles, 3)
	require.EqualValues(t, 3, body.Total)
	// Published and archived both count as touched today; the draft does not.
	require.EqualValues(t, 2, body.PublishedTodayCount)
}

func TestAdminChangeArticleStatus(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	reporter := createUser(t, db, "Reporter", "reporter@example.com", models.RoleReporter)
	article := createArticle(t, db, "Story", "story", models.StatusDraft, reporter.ID, 0)

	c, rec := newContext(t, http.MethodPatch, "/", `{"status":"ARCHIVED"}`, "articleId", jsonUint(article.ID))
	require.NoError(t, h.ChangeArticleStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Article
	require.NoError(t, db.First(&updated, article.ID).Error)
	require.Equal(t, models.StatusArchived, updated.Status)

	c, _ = newContext(t, http.MethodPatch, "/", `{"status":"NOPE"}`, "articleId", jsonUint(article.ID))
	requireHTTPError(t, h.ChangeArticleStatus(c), http.StatusBadRequest)
}

func TestAdminDeleteArticle(t *testing.T) {
	db := newTestDB(t)
	h := &AdminHandler{DB: db}
	reporter := createUser(t, db, "Reporter", "reporter@example.com", models.RoleReporter)
	article := createArticle(t, db, "Story", "story", models.StatusPublished, reporter.ID, 0)

	c, rec := newContext(t, http.MethodDelete, "/", "", "articleId", jsonUint(article.ID))
	require.NoError(t, h.DeleteArticle(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Article{}).Count(&count).Error)
	require.Zero(t, count)

	c, _ = newContext(t, http.MethodDelete, "/", "", "articleId", jsonUint(article.ID))
	requireHTTPError(t, h.DeleteArticle(c), http.StatusNotFound)
}
