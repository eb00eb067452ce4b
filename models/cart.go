package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one row of a user's cart. ProductID is nil for custom lines
// that have no catalog product behind them; the name/image/price/unit snapshot
// is always denormalized here and frozen at add time.
//
// Uniqueness is enforced by two partial indexes created at migration time:
// (user_id, product_id) where product_id is set, and (user_id, name) where it
// is not. Cart merges upsert against those keys.
type CartLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"index;not null" json:"user_id"`
	ProductID *uint           `json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit      string          `json:"unit"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}
