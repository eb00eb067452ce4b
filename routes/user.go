package routes

import (
	"github.com/Pixel0001/Nutopia-sub001/config"
	cartControllers "github.com/Pixel0001/Nutopia-sub001/controllers/cart"
	conversationControllers "github.com/Pixel0001/Nutopia-sub001/controllers/conversation"
	productControllers "github.com/Pixel0001/Nutopia-sub001/controllers/product"
	userControllers "github.com/Pixel0001/Nutopia-sub001/controllers/user"
	"github.com/Pixel0001/Nutopia-sub001/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupUserRoutes registers the storefront endpoints.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	// Public catalog.
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:slug", productControllers.GetProductBySlug(db))
	r.GET("/categories", productControllers.GetCategories(db))

	// Cart display degrades gracefully for guests.
	r.GET("/user/cart", middleware.OptionalToken(cfg.JWTSecret), cartControllers.GetUserCart(db))

	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(cfg.JWTSecret))
	{
		userGroup.GET("/", userControllers.GetUser(db))
		userGroup.PUT("/", userControllers.UpdateUser(db))

		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.POST("/", cartControllers.AddToCart(db))
			cartGroup.PUT("/:id", cartControllers.UpdateCartLine(db))
			cartGroup.DELETE("/:id", cartControllers.DeleteCartLine(db))
			cartGroup.DELETE("/", cartControllers.ClearUserCart(db))
		}

		userGroup.GET("/messages", conversationControllers.GetMyConversation(db))
		userGroup.POST("/messages", conversationControllers.PostMessage(db))
	}
}
