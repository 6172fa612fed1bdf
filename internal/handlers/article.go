package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/events"
	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/logging"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/session"
	"github.com/newsphere/backend/internal/util"
)

type ArticleHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type videoInput struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type articleInput struct {
	Title           *string      `json:"title"`
	Content         *string      `json:"content"`
	CategoryID      *uint        `json:"category_id"`
	CoverImage      *string      `json:"cover_image"`
	MetaTitle       *string      `json:"meta_title"`
	MetaDescription *string      `json:"meta_description"`
	Tags            *[]string    `json:"tags"`
	Videos          *[]videoInput `json:"videos"`
}

func (h *ArticleHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicArticleEvents, fmt.Sprint(event["articleID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err.Error())
	}
}

// slugOrIDClause matches a path segment against the numeric id or slug column.
func slugOrIDClause(db *gorm.DB, slugOrID string) *gorm.DB {
	if id, err := strconv.Atoi(slugOrID); err == nil {
		return db.Where("id = ?", id)
	}
	return db.Where("slug = ?", slugOrID)
}

// uniqueArticleSlug appends a timestamp suffix when the generated slug is
// taken by a different article.
func (h *ArticleHandler) uniqueArticleSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	slug := util.Slugify(title)
	var existing models.Article
	err := h.DB.WithContext(ctx).Where("slug = ?", slug).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		return "", err
	}
	if existing.ID == excludeID {
		return slug, nil
	}
	return util.UniqueSuffix(slug), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func validVideoType(t string) bool { return t == "upload" || t == "embed" }

func (h *ArticleHandler) Create(c echo.Context) error {
	id, ok := session.FromContext(c.Request().Context())
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var req articleInput
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	fields := map[string][]string{}
	if req.Title == nil || len(*req.Title) < 3 {
		fields["title"] = append(fields["title"], "Title must be at least 3 characters")
	}
	if req.Content == nil || len(*req.Content) < 10 {
		fields["content"] = append(fields["content"], "Content must be at least 10 characters")
	}
	if req.Videos != nil {
		for _, v := range *req.Videos {
			if !validVideoType(v.Type) {
				fields["videos"] = append(fields["videos"], "Video type must be upload or embed")
				break
			}
		}
	}
	if len(fields) > 0 {
		return httperr.Validation(fields)
	}

	ctx := c.Request().Context()
	slug, err := h.uniqueArticleSlug(ctx, *req.Title, 0)
	if err != nil {
		return httperr.Internal(err)
	}

	article := models.Article{
		Title:    *req.Title,
		Slug:     slug,
		Content:  *req.Content,
		Status:   models.StatusDraft,
		AuthorID: id.UserID,
	}
	if req.CategoryID != nil {
		article.CategoryID = req.CategoryID
	}
	if req.CoverImage != nil {
		article.CoverImage = *req.CoverImage
	}
	article.MetaTitle = truncate(*req.Title, 60)
	if req.MetaTitle != nil && *req.MetaTitle != "" {
		article.MetaTitle = *req.MetaTitle
	}
	article.MetaDescription = truncate(*req.Content, 160)
	if req.MetaDescription != nil && *req.MetaDescription != "" {
		article.MetaDescription = *req.MetaDescription
	}
	if req.Tags != nil {
		article.Tags = *req.Tags
	}
	if req.Videos != nil {
		for _, v := range *req.Videos {
			article.Videos = append(article.Videos, models.ArticleVideo{
				Type:        v.Type,
				URL:         v.URL,
				Title:       v.Title,
				Description: v.Description,
			})
		}
	}

	if err := h.DB.WithContext(ctx).Create(&article).Error; err != nil {
		return httperr.Internal(err)
	}

	h.DB.WithContext(ctx).Preload("Author").Preload("Category").Preload("Videos").First(&article, article.ID)

	h.publish(c, map[string]interface{}{
		"type":      "article_created",
		"articleID": article.ID,
		"title":     article.Title,
	})

	return c.JSON(http.StatusCreated, echo.Map{"article": article})
}

// List serves both the public feed and the dashboard listing. Guests and
// plain USERs only ever see published, non-deleted articles.
func (h *ArticleHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	id, authed := session.FromContext(ctx)
	isGuest := !authed || id.Role == models.RoleUser

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(ctx).Model(&models.Article{}).Where("articles.deleted_at IS NULL")

	if isGuest {
		q = q.Where("articles.status = ?", models.StatusPublished)
	} else if status := c.QueryParam("status"); status != "" {
		q = q.Where("articles.status = ?", status)
	}

	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("articles.title LIKE ? OR articles.content LIKE ?", pattern, pattern)
	}

	if category := c.QueryParam("category"); category != "" {
		var matching []models.Category
		if err := h.DB.WithContext(ctx).Preload("Children").
			Where("slug = ? OR name LIKE ?", category, "%"+category+"%").
			Find(&matching).Error; err != nil {
			return httperr.Internal(err)
		}
		if len(matching) > 0 {
			ids := make([]uint, 0, len(matching))
			for _, cat := range matching {
				ids = append(ids, cat.ID)
				for _, child := range cat.Children {
					ids = append(ids, child.ID)
				}
			}
			q = q.Where("articles.category_id IN ?", ids)
		} else {
			q = q.Joins("JOIN categories ON categories.id = articles.category_id").
				Where("categories.name LIKE ?", "%"+category+"%")
		}
	}

	if author := c.QueryParam("author"); author != "" {
		q = q.Joins("JOIN users ON users.id = articles.author_id").
			Where("users.name LIKE ?", "%"+author+"%")
	}

	if startDate := c.QueryParam("startDate"); startDate != "" {
		if t, err := time.Parse(time.RFC3339, startDate); err == nil {
			q = q.Where("articles.created_at >= ?", t)
		}
	}
	if endDate := c.QueryParam("endDate"); endDate != "" {
		if t, err := time.Parse(time.RFC3339, endDate); err == nil {
			q = q.Where("articles.created_at <= ?", t)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return httperr.Internal(err)
	}

	var articles []models.Article
	if err := q.Preload("Author", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	}).Preload("Category", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "slug")
	}).Order("articles.created_at DESC").Offset(offset).Limit(limit).
		Find(&articles).Error; err != nil {
		return httperr.Internal(err)
	}

	bookmarked := map[uint]bool{}
	if authed && len(articles) > 0 {
		articleIDs := make([]uint, len(articles))
		for i, a := range articles {
			articleIDs[i] = a.ID
		}
		var bookmarks []models.Bookmark
		if err := h.DB.WithContext(ctx).
			Where("user_id = ? AND article_id IN ?", id.UserID, articleIDs).
			Find(&bookmarks).Error; err != nil {
			return httperr.Internal(err)
		}
		for _, b := range bookmarks {
			bookmarked[b.ArticleID] = true
		}
	}

	data := make([]map[string]interface{}, len(articles))
	for i, a := range articles {
		data[i] = map[string]interface{}{
			"id":               a.ID,
			"title":            a.Title,
			"slug":             a.Slug,
			"cover_image":      a.CoverImage,
			"status":           a.Status,
			"meta_title":       a.MetaTitle,
			"meta_description": a.MetaDescription,
			"category":         a.Category,
			"author":           a.Author,
			"created_at":       a.CreatedAt,
			"updated_at":       a.UpdatedAt,
			"is_bookmarked":    bookmarked[a.ID],
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": data,
		"pagination": echo.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *ArticleHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id, authed := session.FromContext(ctx)
	isGuest := !authed || id.Role == models.RoleUser

	var article models.Article
	err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Category", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug") }).
		Preload("Videos").
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}

	if article.DeletedAt != nil || (isGuest && article.Status != models.StatusPublished) {
		return httperr.NotFound("Article not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"article": article})
}

// Adjacent returns the published neighbors of an article in creation order.
func (h *ArticleHandler) Adjacent(c echo.Context) error {
	ctx := c.Request().Context()

	var current models.Article
	if err := h.DB.WithContext(ctx).Where("slug = ?", c.Param("slug")).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}

	published := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Article{}).
			Select("title", "slug").
			Where("status = ? AND deleted_at IS NULL", models.StatusPublished)
	}

	var next, prev *models.Article
	var candidate models.Article
	err := published(h.DB.WithContext(ctx)).
		Where("created_at > ?", current.CreatedAt).
		Order("created_at ASC").First(&candidate).Error
	if err == nil {
		n := candidate
		next = &n
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.Internal(err)
	}

	candidate = models.Article{}
	err = published(h.DB.WithContext(ctx)).
		Where("created_at < ?", current.CreatedAt).
		Order("created_at DESC").First(&candidate).Error
	if err == nil {
		p := candidate
		prev = &p
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"next": next, "prev": prev})
}

// GetWithRoleCheck serves the edit view: admins and editors see any article,
// reporters only their own.
func (h *ArticleHandler) GetWithRoleCheck(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var article models.Article
	err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Preload("Category", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug") }).
		Preload("Videos").
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}
	if article.DeletedAt != nil {
		return httperr.NotFound("Article not found")
	}

	switch {
	case id.Role == models.RoleAdmin || id.Role == models.RoleEditor:
		return c.JSON(http.StatusOK, echo.Map{"article": article})
	case id.Role == models.RoleReporter && article.AuthorID == id.UserID:
		return c.JSON(http.StatusOK, echo.Map{"article": article})
	case id.Role == models.RoleReporter:
		return httperr.Forbidden("Access denied: you can only view your own articles")
	default:
		return httperr.Forbidden("Access denied: insufficient permissions")
	}
}

func (h *ArticleHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var req articleInput
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	var article models.Article
	if err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).
		Preload("Videos").First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}

	isAdmin := id.Role == models.RoleAdmin
	isEditor := id.Role == models.RoleEditor
	isReporterOwner := id.Role == models.RoleReporter && article.AuthorID == id.UserID
	if !isAdmin && !isEditor && !isReporterOwner {
		return httperr.Forbidden("You are not authorized to update this article")
	}

	if req.Title != nil {
		if *req.Title != article.Title {
			slug, err := h.uniqueArticleSlug(ctx, *req.Title, article.ID)
			if err != nil {
				return httperr.Internal(err)
			}
			article.Slug = slug
		}
		article.Title = *req.Title
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.CategoryID != nil {
		article.CategoryID = req.CategoryID
	}
	if req.CoverImage != nil {
		article.CoverImage = *req.CoverImage
	}
	if req.MetaTitle != nil {
		article.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		article.MetaDescription = *req.MetaDescription
	}
	if req.Tags != nil {
		article.Tags = *req.Tags
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Videos != nil {
			if err := tx.Where("article_id = ?", article.ID).Delete(&models.ArticleVideo{}).Error; err != nil {
				return err
			}
			article.Videos = nil
			for _, v := range *req.Videos {
				article.Videos = append(article.Videos, models.ArticleVideo{
					ArticleID:   article.ID,
					Type:        v.Type,
					URL:         v.URL,
					Title:       v.Title,
					Description: v.Description,
				})
			}
		}
		return tx.Save(&article).Error
	})
	if err != nil {
		return httperr.Internal(err)
	}

	h.DB.WithContext(ctx).Preload("Author").Preload("Category").Preload("Videos").First(&article, article.ID)

	h.publish(c, map[string]interface{}{
		"type":      "article_updated",
		"articleID": article.ID,
		"title":     article.Title,
	})

	return c.JSON(http.StatusOK, echo.Map{"article": article})
}

// Delete soft-deletes by default; ?force=true removes the row for good and is
// admin only.
func (h *ArticleHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := session.FromContext(ctx)
	if !ok {
		return httperr.Auth("Unauthorized")
	}

	var article models.Article
	if err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}

	isAdmin := id.Role == models.RoleAdmin
	isReporterOwner := id.Role == models.RoleReporter && article.AuthorID == id.UserID
	if !isAdmin && !isReporterOwner && id.Role != models.RoleEditor {
		return httperr.Forbidden("You are not authorized to delete this article")
	}

	if c.QueryParam("force") == "true" {
		if !isAdmin {
			return httperr.Forbidden("Only admins can force delete")
		}
		if err := h.DB.WithContext(ctx).Delete(&article).Error; err != nil {
			return httperr.Internal(err)
		}
		h.publish(c, map[string]interface{}{"type": "article_deleted", "articleID": article.ID})
		return c.JSON(http.StatusOK, echo.Map{"message": "Article permanently deleted"})
	}

	if article.DeletedAt != nil {
		return httperr.BadRequest("Article is already soft deleted")
	}
	now := time.Now()
	if err := h.DB.WithContext(ctx).Model(&article).Update("deleted_at", &now).Error; err != nil {
		return httperr.Internal(err)
	}
	h.publish(c, map[string]interface{}{"type": "article_deleted", "articleID": article.ID})
	return c.JSON(http.StatusOK, echo.Map{"message": "Article soft deleted", "article": article})
}

func (h *ArticleHandler) Restore(c echo.Context) error {
	ctx := c.Request().Context()

	var article models.Article
	if err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Article not found")
		}
		return httperr.Internal(err)
	}
	if article.DeletedAt == nil {
		return httperr.BadRequest("Article is not deleted")
	}
	if err := h.DB.WithContext(ctx).Model(&article).Update("deleted_at", nil).Error; err != nil {
		return httperr.Internal(err)
	}
	article.DeletedAt = nil
	return c.JSON(http.StatusOK, echo.Map{"message": "Article restored successfully", "article": article})
}

func (h *ArticleHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if !models.ValidStatus(req.Status) {
		return httperr.BadRequest("Invalid status value")
	}

	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("Invalid article id")
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
	return c.JSON(http.StatusOK, echo.Map{"article": article})
}
