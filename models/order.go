package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // created from a paid/placed cart
	OrderStatusConfirmed  OrderStatus = "confirmed"  // accepted by staff
	OrderStatusProcessing OrderStatus = "processing" // being assembled
	OrderStatusShipped    OrderStatus = "shipped"    // handed to courier
	OrderStatusDelivered  OrderStatus = "delivered"  // customer received it
	OrderStatusCancelled  OrderStatus = "cancelled"  // reachable from any non-terminal state
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// ParseOrderStatus maps a request string to one of the six statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusConfirmed:
		return OrderStatusConfirmed, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// Order is an immutable snapshot of a cart at checkout time. Items are copies
// of the cart lines, so later catalog edits never alter historical orders.
// PaymentRef holds the gateway intent id when the order was paid online; its
// unique index is what makes capture -> order creation replay-safe.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderRef      string          `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID        string          `gorm:"index;not null" json:"user_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	AddressLine   string          `json:"address_line"`
	City          string          `json:"city"`
	PostalCode    string          `json:"postal_code"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(10,2)" json:"shipping_cost"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	PaymentMethod string          `json:"payment_method"` // e.g. "card", "cash"
	PaymentRef    *string         `gorm:"uniqueIndex" json:"payment_ref,omitempty"`
	Status        OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index" json:"order_id"`
	ProductID *uint           `json:"product_id,omitempty"`
	Name      string          `gorm:"not null" json:"name"`
	Image     string          `json:"image"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}
