package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/hash"
	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/util"
)

// AdminHandler serves the ADMIN-only management surface. Role gating happens
// in the router group, not here.
type AdminHandler struct {
	DB *gorm.DB
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	fields := map[string][]string{}
	if len(req.Name) < 2 {
		fields["name"] = append(fields["name"], "Name must be at least 2 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = append(fields["email"], "Invalid email address")
	}
	if len(req.Password) < 6 {
		fields["password"] = append(fields["password"], "Password must be at least 6 characters")
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !models.ValidRole(req.Role) {
		fields["role"] = append(fields["role"], "Invalid role")
	}
	if len(fields) > 0 {
		return httperr.Validation(fields)
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return httperr.Conflict("User with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.Internal(err)
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return httperr.Internal(err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(ctx).Model(&models.User{})
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return httperr.Internal(err)
	}

	var users []models.User
	if err := q.Select("id", "email", "name", "role", "is_active", "created_at", "updated_at").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return httperr.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"pagination": echo.Map{
			"total":      total,
			"page":       page,
			"limit":      limit,
			"totalPages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return httperr.BadRequest("Invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if !models.ValidRole(req.Role) {
		return httperr.Validation(map[string][]string{"role": {"Invalid role"}})
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("User not found")
		}
		return httperr.Internal(err)
	}
	if err := h.DB.WithContext(ctx).Model(&user).Update("role", req.Role).Error; err != nil {
		return httperr.Internal(err)
	}
	user.Role = req.Role
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User role updated successfully",
		"user":    user,
	})
}

func (h *AdminHandler) ToggleUserActive(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return httperr.BadRequest("Invalid user id")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("User not found")
		}
		return httperr.Internal(err)
	}

	if err := h.DB.WithContext(ctx).Model(&user).Update("is_active", !user.IsActive).Error; err != nil {
		return httperr.Internal(err)
	}
	user.IsActive = !user.IsActive

	msg := "User deactivated"
	if user.IsActive {
		msg = "User activated"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "user": user})
}

// ListArticles is the dashboard listing: every status, soft-deleted included,
// with a count of articles touched today that are past draft.
func (h *AdminHandler) ListArticles(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(ctx).Model(&models.Article{})
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return httperr.Internal(err)
	}

	var articles []models.Article
	if err := q.Preload("Author", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	}).Preload("Category", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "slug")
	}).Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&articles).Error; err != nil {
		return httperr.Internal(err)
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	var publishedToday int64
	if err := h.DB.WithContext(ctx).Model(&models.Article{}).
		Where("status <> ? AND updated_at >= ? AND updated_at < ?",
			models.StatusDraft, midnight, midnight.Add(24*time.Hour)).
		Count(&publishedToday).Error; err != nil {
		return httperr.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"articles":            articles,
		"total":               total,
		"publishedTodayCount": publishedToday,
		"page":                page,
		"limit":               limit,
		"totalPages":          (total + int64(limit) - 1) / int64(limit),
	})
}

func (h *AdminHandler) GetArticle(c echo.Context) error {
	ctx := c.Request().Context()

	var article models.Article
	err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Preload("Category", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug") }).
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"article": article})
}

func (h *AdminHandler) ChangeArticleStatus(c echo.Context) error {
	ctx := c.Request().Context()

	articleID, err := strconv.Atoi(c.Param("articleId"))
	if err != nil {
		return httperr.BadRequest("Invalid article id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if !models.ValidStatus(req.Status) {
		return httperr.Validation(map[string][]string{"status": {"Invalid article status"}})
	}

	var article models.Article
	if err := h.DB.WithContext(ctx).First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}
	if err := h.DB.WithContext(ctx).Model(&article).Update("status", req.Status).Error; err != nil {
		return httperr.Internal(err)
	}
	article.Status = req.Status
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Article status updated successfully",
		"article": article,
	})
}

// DeleteArticle removes the row for good; there is no soft-delete path on the
// admin surface.
func (h *AdminHandler) DeleteArticle(c echo.Context) error {
	ctx := c.Request().Context()

	articleID, err := strconv.Atoi(c.Param("articleId"))
	if err != nil {
		return httperr.BadRequest("Invalid article id")
	}

	result := h.DB.WithContext(ctx).Delete(&models.Article{}, articleID)
	if result.Error != nil {
		return httperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return httperr.NotFound("Article not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Article deleted successfully"})
}
