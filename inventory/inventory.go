package inventory

import (
	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Check validates a requested total quantity against a product's stock.
// Lines without a catalog product are exempt and never reach this check.
func Check(p *models.Product, requested int) error {
	if requested > p.Stock {
		return &apperr.InsufficientStockError{Available: p.Stock, Unit: p.Unit}
	}
	return nil
}

// ForUpdate adds a row lock on dialects that support it. The sqlite test
// database is single-writer and rejects FOR UPDATE.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Consume decrements stock atomically. The WHERE floor guard plus the
// RowsAffected check reject the decrement instead of letting stock go
// negative when a concurrent checkout won the race.
func Consume(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return err
		}
		return &apperr.InsufficientStockError{Available: p.Stock, Unit: p.Unit}
	}
	return nil
}
