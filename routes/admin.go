package routes

import (
	"github.com/Pixel0001/Nutopia-sub001/config"
	conversationControllers "github.com/Pixel0001/Nutopia-sub001/controllers/conversation"
	productControllers "github.com/Pixel0001/Nutopia-sub001/controllers/product"
	userControllers "github.com/Pixel0001/Nutopia-sub001/controllers/user"
	"github.com/Pixel0001/Nutopia-sub001/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers the staff/admin back-office endpoints.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken(cfg.JWTSecret))

	staff := adminGroup.Group("")
	staff.Use(middleware.RequireStaff())
	{
		staff.GET("/users", userControllers.GetAllUsers(db))
		staff.GET("/conversations", conversationControllers.ListConversations(db))
		staff.POST("/conversations/:id/messages", conversationControllers.StaffReply(db))
	}

	admin := adminGroup.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.PUT("/users/:id/block", userControllers.BlockUser(db))

		admin.POST("/products", productControllers.CreateProduct(db))
		admin.PUT("/products/:id", productControllers.UpdateProduct(db))
		admin.DELETE("/products/:id", productControllers.DeleteProduct(db))

		admin.POST("/categories", productControllers.CreateCategory(db))
		admin.PUT("/categories/:id", productControllers.UpdateCategory(db))
		admin.DELETE("/categories/:id", productControllers.DeleteCategory(db))
	}
}
