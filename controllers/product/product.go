package productControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Unit        string           `json:"unit" binding:"required"`
	Stock       int              `json:"stock"`
	Image       string           `json:"image"`
	Active      *bool            `json:"active"`
	CategoryID  *uint            `json:"category_id"`
}

type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit"`
	Stock       *int             `json:"stock"`
	Image       *string          `json:"image"`
	Active      *bool            `json:"active"`
	CategoryID  *uint            `json:"category_id"`
}

// uniqueSlug derives a slug from name and disambiguates collisions with a
// numeric suffix. Soft-deleted rows still hold their slot in the unique
// index, so the count is unscoped.
func uniqueSlug(db *gorm.DB, model any, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var n int64
		if err := db.Unscoped().Model(model).Where("slug = ?", candidate).Count(&n).Error; err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// GET /products
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Where("active = ?", true)
		if category := c.Query("category"); category != "" {
			query = query.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", category)
		}

		var products []models.Product
		if err := query.Order("products.name").Find(&products).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("list products: %w", err))
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GET /products/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("product: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load product: %w", err))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid product: %v", err))
			return
		}
		if input.Price.LessThanOrEqual(decimal.Zero) {
			apperr.Respond(c, apperr.Validation("price must be a positive amount"))
			return
		}
		if input.Stock < 0 {
			apperr.Respond(c, apperr.Validation("stock must not be negative"))
			return
		}

		productSlug, err := uniqueSlug(db, &models.Product{}, input.Name)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		product := models.Product{
			Name:        input.Name,
			Slug:        productSlug,
			Description: input.Description,
			Price:       *input.Price,
			Unit:        input.Unit,
			Stock:       input.Stock,
			Image:       input.Image,
			Active:      true,
			CategoryID:  input.CategoryID,
		}
		if input.Active != nil {
			product.Active = *input.Active
		}

		if err := db.Create(&product).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("create product: %w", err))
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("product: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load product: %w", err))
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid product: %v", err))
			return
		}

		if input.Name != nil && *input.Name != product.Name {
			newSlug, err := uniqueSlug(db, &models.Product{}, *input.Name)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			product.Name = *input.Name
			product.Slug = newSlug
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Price != nil {
			if input.Price.LessThanOrEqual(decimal.Zero) {
				apperr.Respond(c, apperr.Validation("price must be a positive amount"))
				return
			}
			product.Price = *input.Price
		}
		if input.Unit != nil {
			product.Unit = *input.Unit
		}
		if input.Stock != nil {
			if *input.Stock < 0 {
				apperr.Respond(c, apperr.Validation("stock must not be negative"))
				return
			}
			product.Stock = *input.Stock
		}
		if input.Image != nil {
			product.Image = *input.Image
		}
		if input.Active != nil {
			product.Active = *input.Active
		}
		if input.CategoryID != nil {
			product.CategoryID = input.CategoryID
		}

		if err := db.Save(&product).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("update product: %w", err))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id
// Soft delete; existing order snapshots keep their copied line items.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Where("id = ?", c.Param("id")).Delete(&models.Product{})
		if res.Error != nil {
			apperr.Respond(c, fmt.Errorf("delete product: %w", res.Error))
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, fmt.Errorf("product: %w", apperr.ErrNotFound))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
