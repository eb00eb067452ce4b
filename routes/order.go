package routes

import (
	"github.com/Pixel0001/Nutopia-sub001/config"
	orderControllers "github.com/Pixel0001/Nutopia-sub001/controllers/order"
	"github.com/Pixel0001/Nutopia-sub001/middleware"
	"github.com/Pixel0001/Nutopia-sub001/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, notifier notify.Notifier) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(cfg.JWTSecret))
	{
		// Direct placement for offline payment methods.
		orders.POST("/", orderControllers.PlaceOrderHandler(db, notifier))

		// Customer's own order history.
		orders.GET("/my", orderControllers.GetMyOrdersHandler(db))

		staff := orders.Group("")
		staff.Use(middleware.RequireStaff())
		{
			staff.GET("/", orderControllers.GetAllOrdersHandler(db))
			staff.GET("/export", orderControllers.ExportOrdersToExcel(db))
			staff.GET("/ws", orderControllers.OrderWebSocketHandler)
			staff.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
			staff.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
		}

		admin := orders.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.DELETE("/:orderID", orderControllers.DeleteOrderHandler(db))
		}
	}
}
