package routes

import (
	"github.com/Pixel0001/Nutopia-sub001/auth"
	"github.com/Pixel0001/Nutopia-sub001/config"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers the public auth endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", auth.LoginHandler(db, cfg))
	}
}
