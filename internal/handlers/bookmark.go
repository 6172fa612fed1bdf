package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/session"
)

type BookmarkHandler struct {
	DB *gorm.DB
}

// Create answers 200 when the bookmark already exists; double-bookmarking is
// not an error worth surfacing.
func (h *BookmarkHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var req struct {
		ArticleID uint `json:"article_id"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if req.ArticleID == 0 {
		return httperr.BadRequest("Article ID is required")
	}

	bookmark := models.Bookmark{UserID: id.UserID, ArticleID: req.ArticleID}
	if err := h.DB.WithContext(ctx).Create(&bookmark).Error; err != nil {
		if isUniqueViolation(err) {
			return c.JSON(http.StatusOK, echo.Map{
				"success": true,
				"message": "Article already bookmarked",
			})
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"message":  "Article bookmarked successfully",
		"bookmark": bookmark,
	})
}

func (h *BookmarkHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var req struct {
		ArticleID uint `json:"article_id"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	result := h.DB.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", id.UserID, req.ArticleID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		return httperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return httperr.NotFound("Bookmark not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Bookmark removed successfully",
	})
}

func (h *BookmarkHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	articleID, err := strconv.Atoi(c.Param("articleId"))
	if err != nil {
		return httperr.BadRequest("Article ID is required")
	}

	var bookmark models.Bookmark
	if err := h.DB.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", id.UserID, articleID).
		First(&bookmark).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Bookmark not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Article is bookmarked",
		"bookmark": bookmark,
	})
}

func (h *BookmarkHandler) ListForUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var bookmarks []models.Bookmark
	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", id.UserID).
		Preload("Article").
		Find(&bookmarks).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"bookmarks":     bookmarks,
		"bookmarkCount": len(bookmarks),
	})
}

// isUniqueViolation detects duplicate-key failures from both postgres and
// sqlite without binding to a driver error type.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique_violation") ||
		strings.Contains(msg, "duplicate key")
}
