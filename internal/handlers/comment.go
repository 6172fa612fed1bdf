package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/session"
)

type CommentHandler struct {
	DB *gorm.DB
}

func (h *CommentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var req struct {
		ArticleID uint   `json:"article_id"`
		Content   string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if req.ArticleID == 0 || req.Content == "" {
		return httperr.Validation(map[string][]string{
			"content": {"Article id and content are required"},
		})
	}

	comment := models.Comment{
		ArticleID: req.ArticleID,
		UserID:    id.UserID,
		Content:   req.Content,
	}
	if err := h.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) ListByArticle(c echo.Context) error {
	ctx := c.Request().Context()

	articleID, err := strconv.Atoi(c.Param("articleId"))
	if err != nil {
		return httperr.BadRequest("Invalid article id")
	}

	var comments []models.Comment
	if err := h.DB.WithContext(ctx).
		Where("article_id = ?", articleID).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

func (h *CommentHandler) ListByUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return httperr.BadRequest("Invalid user id")
	}

	var comments []models.Comment
	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Article", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title", "slug") }).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// ownComment loads the comment and checks the caller owns it.
func (h *CommentHandler) ownComment(c echo.Context) (*models.Comment, error) {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return nil, httperr.Auth("Unauthorized")
	}

	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		return nil, httperr.BadRequest("Invalid comment id")
	}

	var comment models.Comment
	if err := h.DB.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Comment not found")
		}
		return nil, httperr.Internal(err)
	}
	if comment.UserID != id.UserID {
		return nil, httperr.Forbidden("You are not authorized to modify this comment")
	}
	return &comment, nil
}

func (h *CommentHandler) Update(c echo.Context) error {
	comment, err := h.ownComment(c)
	if err != nil {
		return err
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if req.Content == "" {
		return httperr.Validation(map[string][]string{"content": {"Content is required"}})
	}

	if err := h.DB.WithContext(c.Request().Context()).
		Model(comment).Update("content", req.Content).Error; err != nil {
		return httperr.Internal(err)
	}
	comment.Content = req.Content
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) Delete(c echo.Context) error {
	comment, err := h.ownComment(c)
	if err != nil {
		return err
	}
	if err := h.DB.WithContext(c.Request().Context()).Delete(comment).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}
