package userControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateUserInput struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
}

type BlockUserInput struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("user: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load user: %w", err))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /user
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("user: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load user: %w", err))
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: %v", err))
			return
		}

		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.Address != nil {
			user.Address = *input.Address
		}

		if err := db.Save(&user).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("update user: %w", err))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users (staff)
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("created_at desc").Find(&users).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("list users: %w", err))
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// PUT /admin/users/:id/block (admin)
func BlockUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BlockUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: %v", err))
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("user: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load user: %w", err))
			return
		}

		reason := input.Reason
		if !input.Blocked {
			reason = ""
		}
		updates := map[string]interface{}{"blocked": input.Blocked, "block_reason": reason}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("block user: %w", err))
			return
		}

		user.Blocked = input.Blocked
		user.BlockReason = reason
		c.JSON(http.StatusOK, user)
	}
}
