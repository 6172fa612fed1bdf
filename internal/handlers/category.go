package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/util"
)

type CategoryHandler struct {
	DB *gorm.DB
}

// Fixed front-page ordering for the root categories; anything else sorts last.
var categoryOrder = map[string]int{
	"general":                  1,
	"politics":                 2,
	"science-and-technology":   3,
	"sports-and-entertainment": 4,
	"business":                 5,
}

type categoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	ParentID    *uint   `json:"parent_id"`
}

func (h *CategoryHandler) uniqueCategorySlug(ctx context.Context, name string, excludeID uint) (string, error) {
	slug := util.Slugify(name)
	var existing models.Category
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

func (h *CategoryHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req categoryInput
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if req.Name == nil || len(*req.Name) < 2 {
		return httperr.Validation(map[string][]string{
			"name": {"Category name must be at least 2 characters"},
		})
	}

	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.WithContext(ctx).First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.BadRequest("Parent category not found")
			}
			return httperr.Internal(err)
		}
	}

	slug, err := h.uniqueCategorySlug(ctx, *req.Name, 0)
	if err != nil {
		return httperr.Internal(err)
	}

	category := models.Category{
		Name:     *req.Name,
		Slug:     slug,
		IsActive: true,
		ParentID: req.ParentID,
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(ctx).Create(&category).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}

// List returns the active root categories with their active children, in the
// fixed front-page order.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var categories []models.Category
	if err := h.DB.WithContext(ctx).
		Where("is_active = ? AND parent_id IS NULL", true).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Select("id", "name", "slug", "parent_id")
		}).
		Find(&categories).Error; err != nil {
		return httperr.Internal(err)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		oi, ok := categoryOrder[categories[i].Slug]
		if !ok {
			oi = 999
		}
		oj, ok := categoryOrder[categories[j].Slug]
		if !ok {
			oj = 999
		}
		return oi < oj
	})

	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *CategoryHandler) ListWithHierarchy(c echo.Context) error {
	ctx := c.Request().Context()

	var categories []models.Category
	if err := h.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Parent", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "slug")
		}).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Select("id", "name", "slug", "parent_id")
		}).
		Order("parent_id ASC, name ASC").
		Find(&categories).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *CategoryHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	var category models.Category
	if err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Category not found")
		}
		return httperr.Internal(err)
	}
	if !category.IsActive {
		return httperr.NotFound("Category not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"category": category})
}

func (h *CategoryHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req categoryInput
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	if req.Name != nil && len(*req.Name) < 2 {
		return httperr.Validation(map[string][]string{
			"name": {"Category name must be at least 2 characters"},
		})
	}

	var category models.Category
	if err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Category not found")
		}
		return httperr.Internal(err)
	}

	if req.Name != nil {
		slug, err := h.uniqueCategorySlug(ctx, *req.Name, category.ID)
		if err != nil {
			return httperr.Internal(err)
		}
		category.Name = *req.Name
		category.Slug = slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ParentID != nil {
		category.ParentID = req.ParentID
	}

	if err := h.DB.WithContext(ctx).Save(&category).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// Delete is a soft delete: the category is deactivated, never removed.
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	var category models.Category
	if err := slugOrIDClause(h.DB.WithContext(ctx), c.Param("slugOrId")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Category not found")
		}
		return httperr.Internal(err)
	}
	if err := h.DB.WithContext(ctx).Model(&category).Update("is_active", false).Error; err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted (soft) successfully"})
}
