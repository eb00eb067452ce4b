package routes

import (
	"github.com/Pixel0001/Nutopia-sub001/config"
	paymentControllers "github.com/Pixel0001/Nutopia-sub001/controllers/payment"
	"github.com/Pixel0001/Nutopia-sub001/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	notifier := notify.NewTelegram(cfg.Telegram)
	paymentClient := paymentControllers.NewClient(cfg.Payment)

	SetupAuthRoutes(r, db, cfg)
	SetupUserRoutes(r, db, cfg)
	SetupOrderRoutes(r, db, cfg, notifier)
	SetupPaymentRoutes(r, db, cfg, paymentClient, notifier)
	SetupAdminRoutes(r, db, cfg)
}
