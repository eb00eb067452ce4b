package routes

import (
	"github.com/Pixel0001/Nutopia-sub001/config"
	paymentControllers "github.com/Pixel0001/Nutopia-sub001/controllers/payment"
	"github.com/Pixel0001/Nutopia-sub001/middleware"
	"github.com/Pixel0001/Nutopia-sub001/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, client *paymentControllers.Client, notifier notify.Notifier) {
	payment := r.Group("/payment")
	{
		// Creating an intent needs the cart owner's session.
		payment.POST("/intent", middleware.ValidateToken(cfg.JWTSecret), paymentControllers.CreateIntentHandler(db, client))

		// Capture is reached from the gateway redirect, which may have lost
		// the session; the intent id itself is the credential.
		payment.POST("/capture/:intentID", paymentControllers.CaptureIntentHandler(db, client, notifier))
	}
}
