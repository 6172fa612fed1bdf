package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/newsapi"
)

const newsFeedLimit = 50

// NewsHandler maintains the cached-news table: the fetch endpoints (meant for
// a scheduler) upsert provider results, the read endpoints only touch the
// cache.
type NewsHandler struct {
	DB     *gorm.DB
	Client *newsapi.Client
}

func (h *NewsHandler) upsert(c echo.Context, items []newsapi.Item, newsType string) error {
	ctx := c.Request().Context()
	for _, item := range items {
		row := models.NewsItem{
			ID:          item.ID,
			Title:       item.Title,
			PhotoURL:    item.PhotoURL,
			Link:        item.Link,
			Description: item.Description,
			Type:        newsType,
		}
		assignments := map[string]interface{}{
			"title":       row.Title,
			"photo_url":   row.PhotoURL,
			"link":        row.Link,
			"description": row.Description,
		}
		if newsType != "" {
			assignments["type"] = newsType
		}
		if err := h.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// FetchLatest pulls the newsdata.io headline feed into the cache.
func (h *NewsHandler) FetchLatest(c echo.Context) error {
	items, err := h.Client.Latest(c.Request().Context())
	if err != nil {
		return httperr.Internal(err)
	}
	if err := h.upsert(c, items, ""); err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "News updated successfully.",
	})
}

// FetchByCategory pulls one thenewsapi.com category into the cache. Intended
// to be hit by a scheduler, one category per call.
func (h *NewsHandler) FetchByCategory(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		return httperr.BadRequest("Category is required.")
	}

	items, err := h.Client.ByCategory(c.Request().Context(), category)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := h.upsert(c, items, category); err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(items)})
}

func (h *NewsHandler) listByType(c echo.Context, newsType string) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.NewsItem{})
	if newsType != "" {
		q = q.Where("type = ?", newsType)
	}

	var news []models.NewsItem
	if err := q.Order("created_at DESC").Limit(newsFeedLimit).Find(&news).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, news)
}

func (h *NewsHandler) Cached(c echo.Context) error {
	return h.listByType(c, "")
}

// ByType serves one cached category, bound in the router per path.
func (h *NewsHandler) ByType(newsType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.listByType(c, newsType)
	}
}
