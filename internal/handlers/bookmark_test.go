package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/backend/internal/models"
)

func bookmarkFixtures(t *testing.T) (*BookmarkHandler, *models.User, *models.Article) {
	t.Helper()
	db := newTestDB(t)
	reporter := createUser(t, db, "Reporter", "reporter@example.com", models.RoleReporter)
	reader := createUser(t, db, "Reader", "reader@example.com", models.RoleUser)
	article := createArticle(t, db, "Story", "story", models.StatusPublished, reporter.ID, 0)
	return &BookmarkHandler{DB: db}, reader, article
}

func TestBookmarkCreate(t *testing.T) {
	h, reader, article := bookmarkFixtures(t)

	c, rec := newContext(t, http.MethodPost, "/api/bookmarks",
		`{"article_id":`+jsonUint(article.ID)+`}`)
	asUser(c, reader)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var count int64
	require.NoError(t, h.DB.Model(&models.Bookmark{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBookmarkCreateDuplicateIsOK(t *testing.T) {
	h, reader, article := bookmarkFixtures(t)
	body := `{"article_id":` + jsonUint(article.ID) + `}`

	c, _ := newContext(t, http.MethodPost, "/api/bookmarks", body)
	asUser(c, reader)
	require.NoError(t, h.Create(c))

	c, rec := newContext(t, http.MethodPost, "/api/bookmarks", body)
	asUser(c, reader)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "already bookmarked")

	var count int64
	require.NoError(t, h.DB.Model(&models.Bookmark{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBookmarkCreateMissingArticleID(t *testing.T) {
	h, reader, _ := bookmarkFixtures(t)

	c, _ := newContext(t, http.MethodPost, "/api/bookmarks", `{}`)
	asUser(c, reader)
	requireHTTPError(t, h.Create(c), http.StatusBadRequest)
}

func TestBookmarkDelete(t *testing.T) {
	h, reader, article := bookmarkFixtures(t)
	require.NoError(t, h.DB.Create(&models.Bookmark{UserID: reader.ID, ArticleID: article.ID}).Error)

	body := `{"article_id":` + jsonUint(article.ID) + `}`
	c, rec := newContext(t, http.MethodDelete, "/api/bookmarks", body)
	asUser(c, reader)
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Removing it again finds nothing.
	c, _ = newContext(t, http.MethodDelete, "/api/bookmarks", body)
	asUser(c, reader)
	requireHTTPError(t, h.Delete(c), http.StatusNotFound)
}

func TestBookmarkGet(t *testing.T) {
	h, reader, article := bookmarkFixtures(t)
	require.NoError(t, h.DB.Create(&models.Bookmark{UserID: reader.ID, ArticleID: article.ID}).Error)

	c, rec := newContext(t, http.MethodGet, "/", "", "articleId", jsonUint(article.ID))
	asUser(c, reader)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	other := createUser(t, h.DB, "Other", "other@example.com", models.RoleUser)
	c, _ = newContext(t, http.MethodGet, "/", "", "articleId", jsonUint(article.ID))
	asUser(c, other)
	requireHTTPError(t, h.Get(c), http.StatusNotFound)
}

func TestBookmarkListForUser(t *testing.T) {
	h, reader, article := bookmarkFixtures(t)
	second := createArticle(t, h.DB, "Another", "another", models.StatusPublished, article.AuthorID, 0)
	require.NoError(t, h.DB.Create(&models.Bookmark{UserID: reader.ID, ArticleID: article.ID}).Error)
	require.NoError(t, h.DB.Create(&models.Bookmark{UserID: reader.ID, ArticleID: second.ID}).Error)

	c, rec := newContext(t, http.MethodGet, "/api/bookmarks", "")
	asUser(c, reader)
	require.NoError(t, h.ListForUser(c))

	var body struct {
		Bookmarks     []models.Bookmark `json:"bookmarks"`
		BookmarkCount int               `json:"bookmarkCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Bookmarks, 2)
	require.Equal(t, 2, body.BookmarkCount)
	require.NotNil(t, body.Bookmarks[0].Article)
}
