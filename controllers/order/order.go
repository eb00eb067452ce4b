package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/inventory"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/Pixel0001/Nutopia-sub001/notify"
	"github.com/Pixel0001/Nutopia-sub001/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactInfo struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type PlaceOrderRequest struct {
	Contact       ContactInfo `json:"contact" binding:"required"`
	PaymentMethod string      `json:"payment_method" binding:"required,oneof=cash card"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// CreateFromCart turns the user's cart into an immutable order snapshot in a
// single transaction: every catalog line is re-validated against stock under
// a row lock, stock is decremented with a floor guard, totals come from the
// pricing authority, and the cart is cleared. Any failing line aborts the
// whole transaction, so there is never a partial order.
//
// A non-empty paymentRef is the idempotency key: if an order with that
// reference already exists the existing order is returned and nothing is
// re-applied, which makes payment-capture replays safe.
func CreateFromCart(db *gorm.DB, userID string, contact ContactInfo, paymentMethod, paymentRef string) (*models.Order, error) {
	var created *models.Order

	run := func(tx *gorm.DB) error {
		if paymentRef != "" {
			var existing models.Order
			err := tx.Preload("Items").Where("payment_ref = ?", paymentRef).First(&existing).Error
			if err == nil {
				created = &existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup order by payment ref: %w", err)
			}
		}

		var lines []models.CartLine
		if err := tx.Where("user_id = ?", userID).Order("added_at DESC, id DESC").Find(&lines).Error; err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return apperr.ErrEmptyCart
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			if line.ProductID != nil {
				var product models.Product
				err := inventory.ForUpdate(tx).First(&product, *line.ProductID).Error
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("product %q: %w", line.Name, apperr.ErrNotFound)
					}
					return fmt.Errorf("load product: %w", err)
				}
				if err := inventory.Check(&product, line.Quantity); err != nil {
					return err
				}
				if err := inventory.Consume(tx, product.ID, line.Quantity); err != nil {
					return err
				}
			}

			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				Image:     line.Image,
				Unit:      line.Unit,
				Price:     line.Price,
				Quantity:  line.Quantity,
			})
		}

		totals := pricing.ComputeTotals(lines)

		order := models.Order{
			OrderRef:      generateOrderRef(),
			UserID:        userID,
			CustomerName:  contact.Name,
			CustomerEmail: contact.Email,
			CustomerPhone: contact.Phone,
			AddressLine:   contact.Address,
			City:          contact.City,
			PostalCode:    contact.PostalCode,
			Items:         items,
			Subtotal:      totals.Subtotal,
			ShippingCost:  totals.ShippingCost,
			Total:         totals.Total,
			PaymentMethod: paymentMethod,
			Status:        models.OrderStatusPending,
		}
		if paymentRef != "" {
			order.PaymentRef = &paymentRef
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		created = &order
		return nil
	}

	err := db.Transaction(run)
	if err != nil && paymentRef != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent replay of the same capture won the insert; surface its order.
		var existing models.Order
		if ferr := db.Preload("Items").Where("payment_ref = ?", paymentRef).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// -------- Handlers --------

// POST /orders
// Direct placement for offline payment methods; card orders go through the
// payment capture flow instead.
func PlaceOrderHandler(db *gorm.DB, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("invalid order request: %v", err))
			return
		}

		order, err := CreateFromCart(db, userID, req.Contact, req.PaymentMethod, "")
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		if notifier != nil {
			notifier.OrderPlaced(order)
		}
		BroadcastOrder("order_placed", order)

		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/my
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var orders []models.Order
		if err := db.Preload("Items").
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("list orders: %w", err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders (staff)
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("list orders: %w", err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// byIDOrRef scopes a query to a path parameter that is either the numeric
// order id or the order reference shown to customers. The columns are typed
// differently on postgres, so the binding must pick one.
func byIDOrRef(db *gorm.DB, param string) *gorm.DB {
	if id, err := strconv.ParseUint(param, 10, 64); err == nil {
		return db.Where("id = ?", id)
	}
	return db.Where("order_ref = ?", param)
}

// GET /orders/:orderID (staff)
// Full detail including the customer contact fields is a staff capability.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		err := byIDOrRef(db.Preload("Items"), c.Param("orderID")).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("order: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load order: %w", err))
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status (staff)
// Any staff member may set any of the six statuses; no transition graph is
// enforced beyond the enum itself.
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("status is required"))
			return
		}

		newStatus, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			apperr.Respond(c, apperr.Validation("invalid order status %q", req.Status))
			return
		}

		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			apperr.Respond(c, fmt.Errorf("order: %w", apperr.ErrNotFound))
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("order: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load order: %w", err))
			return
		}

		if err := db.Model(&order).Update("status", newStatus).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("update order status: %w", err))
			return
		}
		order.Status = newStatus

		BroadcastOrder("status_changed", &order)
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /orders/:orderID (admin)
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			apperr.Respond(c, fmt.Errorf("order: %w", apperr.ErrNotFound))
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("id = ?", orderID).Delete(&models.Order{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("order: %w", apperr.ErrNotFound)
			}
			return tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
	}
}
