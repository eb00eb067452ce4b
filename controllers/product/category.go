package productControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name   string `json:"name" binding:"required"`
	Ord    int    `json:"ord"`
	Active *bool  `json:"active"`
}

// GET /categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		err := db.Where("active = ?", true).
			Preload("Products", "active = ?", true).
			Order("ord, name").
			Find(&categories).Error
		if err != nil {
			apperr.Respond(c, fmt.Errorf("list categories: %w", err))
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// POST /admin/categories
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("name is required"))
			return
		}

		categorySlug, err := uniqueSlug(db, &models.Category{}, input.Name)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		category := models.Category{
			Name:   input.Name,
			Slug:   categorySlug,
			Ord:    input.Ord,
			Active: true,
		}
		if input.Active != nil {
			category.Active = *input.Active
		}

		if err := db.Create(&category).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("create category: %w", err))
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /admin/categories/:id
func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("category: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load category: %w", err))
			return
		}

		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("name is required"))
			return
		}

		if input.Name != category.Name {
			newSlug, err := uniqueSlug(db, &models.Category{}, input.Name)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			category.Name = input.Name
			category.Slug = newSlug
		}
		category.Ord = input.Ord
		if input.Active != nil {
			category.Active = *input.Active
		}

		if err := db.Save(&category).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("update category: %w", err))
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /admin/categories/:id
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Where("id = ?", c.Param("id")).Delete(&models.Category{})
		if res.Error != nil {
			apperr.Respond(c, fmt.Errorf("delete category: %w", res.Error))
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, fmt.Errorf("category: %w", apperr.ErrNotFound))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
