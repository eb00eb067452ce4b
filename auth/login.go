package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/config"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// ResolveIdentity fetches or creates the user for a verified e-mail identity.
// The configured admin e-mail overrides are consulted here, once, at
// resolution time: a matching identity is promoted to admin. Blocked users
// are rejected with the stored reason.
func ResolveIdentity(db *gorm.DB, cfg config.Config, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:    uuid.NewString(),
			Email: email,
			Name:  name,
			Role:  models.RoleUser,
		}
		if _, ok := cfg.AdminEmails[email]; ok {
			user.Role = models.RoleAdmin
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Blocked {
		return nil, fmt.Errorf("account blocked: %s: %w", user.BlockReason, apperr.ErrForbidden)
	}

	if _, ok := cfg.AdminEmails[email]; ok && user.Role != models.RoleAdmin {
		user.Role = models.RoleAdmin
		if err := db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
			return nil, fmt.Errorf("promote user: %w", err)
		}
	}

	return &user, nil
}

// IssueToken signs a bearer token carrying the user's id and role.
func IssueToken(secret string, user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"email":   user.Email,
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// LoginHandler exchanges a verified identity for a bearer token. Upstream
// identity-provider verification happens before this handler; it receives the
// already-verified e-mail.
func LoginHandler(db *gorm.DB, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("email is required"))
			return
		}

		user, err := ResolveIdentity(db, cfg, req.Email, req.Name)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		token, err := IssueToken(cfg.JWTSecret, user)
		if err != nil {
			apperr.Respond(c, fmt.Errorf("sign token: %w", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}
