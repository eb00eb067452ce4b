package cartControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/inventory"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddLineInput struct {
	ProductID *uint            `json:"product_id"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price"`
	Unit      string           `json:"unit"`
	Image     string           `json:"image"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
}

type SetQuantityInput struct {
	Quantity int `json:"quantity"`
}

// lineSource is the tagged variant behind a cart line: either a catalog
// product reference or a free-form custom item. Each carries its own
// validation and upsert key.
type lineSource interface {
	// resolve validates the request inside the cart transaction and returns
	// the line to upsert. Catalog sources lock the product row and run the
	// stock check on existing-quantity + delta.
	resolve(tx *gorm.DB, userID string, qty int) (models.CartLine, error)
	// conflict is the upsert clause matching the source's partial unique key.
	conflict(qty int, now time.Time) clause.OnConflict
	// find scopes a query to the source's key for the owning user.
	find(tx *gorm.DB, userID string) *gorm.DB
}

type catalogSource struct {
	productID uint
}

type customSource struct {
	name  string
	image string
	unit  string
	price decimal.Decimal
}

func newLineSource(in AddLineInput) (lineSource, error) {
	if in.ProductID != nil {
		return catalogSource{productID: *in.ProductID}, nil
	}
	if in.Name == "" {
		return nil, apperr.Validation("name is required for custom cart lines")
	}
	if in.Price == nil || in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("price must be a positive amount")
	}
	if in.Unit == "" {
		return nil, apperr.Validation("unit is required for custom cart lines")
	}
	return customSource{name: in.Name, image: in.Image, unit: in.Unit, price: *in.Price}, nil
}

func (s catalogSource) resolve(tx *gorm.DB, userID string, qty int) (models.CartLine, error) {
	var product models.Product
	err := inventory.ForUpdate(tx).
		Where("id = ? AND active = ?", s.productID, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CartLine{}, fmt.Errorf("product: %w", apperr.ErrNotFound)
		}
		return models.CartLine{}, fmt.Errorf("load product: %w", err)
	}

	// The product row lock serializes concurrent adds for the same product,
	// so the existing-quantity read is stable until commit.
	current := 0
	var existing models.CartLine
	err = tx.Where("user_id = ? AND product_id = ?", userID, s.productID).First(&existing).Error
	if err == nil {
		current = existing.Quantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CartLine{}, fmt.Errorf("load cart line: %w", err)
	}

	if err := inventory.Check(&product, current+qty); err != nil {
		return models.CartLine{}, err
	}

	// Snapshot frozen at add time; later catalog price changes do not touch it.
	return models.CartLine{
		UserID:    userID,
		ProductID: &product.ID,
		Name:      product.Name,
		Image:     product.Image,
		Price:     product.Price,
		Unit:      product.Unit,
		Quantity:  qty,
		AddedAt:   time.Now(),
	}, nil
}

func (s catalogSource) conflict(qty int, now time.Time) clause.OnConflict {
	return clause.OnConflict{
		Columns:     []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("product_id IS NOT NULL")}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + ?", qty),
			"added_at": now,
		}),
	}
}

func (s catalogSource) find(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Where("user_id = ? AND product_id = ?", userID, s.productID)
}

func (s customSource) resolve(tx *gorm.DB, userID string, qty int) (models.CartLine, error) {
	return models.CartLine{
		UserID:   userID,
		Name:     s.name,
		Image:    s.image,
		Price:    s.price,
		Unit:     s.unit,
		Quantity: qty,
		AddedAt:  time.Now(),
	}, nil
}

func (s customSource) conflict(qty int, now time.Time) clause.OnConflict {
	return clause.OnConflict{
		Columns:     []clause.Column{{Name: "user_id"}, {Name: "name"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("product_id IS NULL")}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + ?", qty),
			"added_at": now,
		}),
	}
}

func (s customSource) find(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Where("user_id = ? AND product_id IS NULL AND name = ?", userID, s.name)
}

// AddOrIncrement merges the item into the user's cart: one line per
// (user, product) for catalog items, one per (user, name) for custom items.
// The merge is an atomic upsert against the partial unique key, so concurrent
// adds never produce duplicate lines or lost increments.
func AddOrIncrement(db *gorm.DB, userID string, in AddLineInput) (*models.CartLine, error) {
	if in.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	src, err := newLineSource(in)
	if err != nil {
		return nil, err
	}

	var out models.CartLine
	err = db.Transaction(func(tx *gorm.DB) error {
		line, err := src.resolve(tx, userID, in.Quantity)
		if err != nil {
			return err
		}
		if err := tx.Clauses(src.conflict(in.Quantity, line.AddedAt)).Create(&line).Error; err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}
		return src.find(tx, userID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetQuantity updates a line the user owns. Quantity <= 0 deletes the line.
// Catalog lines are re-validated against stock. Returns nil when deleted.
func SetQuantity(db *gorm.DB, userID string, lineID uint, qty int) (*models.CartLine, error) {
	if qty <= 0 {
		if err := Remove(db, userID, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var out models.CartLine
	err := db.Transaction(func(tx *gorm.DB) error {
		var line models.CartLine
		err := tx.Where("id = ? AND user_id = ?", lineID, userID).First(&line).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart line: %w", apperr.ErrNotFound)
			}
			return fmt.Errorf("load cart line: %w", err)
		}

		if line.ProductID != nil {
			var product models.Product
			err := inventory.ForUpdate(tx).First(&product, *line.ProductID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Product left the catalog; the line keeps its snapshot.
			case err != nil:
				return fmt.Errorf("load product: %w", err)
			default:
				if err := inventory.Check(&product, qty); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&line).Update("quantity", qty).Error; err != nil {
			return fmt.Errorf("update quantity: %w", err)
		}
		out = line
		out.Quantity = qty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes a line scoped to the owning user. A guessed id belonging to
// another user reads as not found.
func Remove(db *gorm.DB, userID string, lineID uint) error {
	res := db.Where("id = ? AND user_id = ?", lineID, userID).Delete(&models.CartLine{})
	if res.Error != nil {
		return fmt.Errorf("delete cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line: %w", apperr.ErrNotFound)
	}
	return nil
}

// Clear removes every line of the user's cart.
func Clear(db *gorm.DB, userID string) error {
	if err := db.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// List returns the user's cart lines, most recently added first.
func List(db *gorm.DB, userID string) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := db.Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return lines, nil
}

// -------- Handlers --------

// POST /user/cart
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input AddLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: %v", err))
			return
		}

		line, err := AddOrIncrement(db, userID, input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, line)
	}
}

// PUT /user/cart/:id
func UpdateCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apperr.Respond(c, apperr.Validation("invalid cart line id"))
			return
		}

		var input SetQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("quantity is required"))
			return
		}

		line, err := SetQuantity(db, userID, uint(lineID), input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if line == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Cart line removed"})
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

// DELETE /user/cart/:id
func DeleteCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apperr.Respond(c, apperr.Validation("invalid cart line id"))
			return
		}

		if err := Remove(db, userID, uint(lineID)); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart line deleted"})
	}
}

// DELETE /user/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		if err := Clear(db, userID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /user/cart
// Auth is optional: guests get an empty cart instead of an error.
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, []models.CartLine{})
			return
		}

		lines, err := List(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}
