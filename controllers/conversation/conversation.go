package conversationControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MessageInput struct {
	Body string `json:"body" binding:"required"`
}

func getOrCreateConversation(db *gorm.DB, userID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	}).Where("user_id = ?", userID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conv = models.Conversation{UserID: userID}
		if err := db.Create(&conv).Error; err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		return &conv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return &conv, nil
}

// GET /user/messages
func GetMyConversation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, err := getOrCreateConversation(db, c.GetString("user_id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}

// POST /user/messages
func PostMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input MessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("body is required"))
			return
		}

		conv, err := getOrCreateConversation(db, c.GetString("user_id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		role, _ := c.Get("role")
		senderRole, ok := role.(models.Role)
		if !ok {
			senderRole = models.RoleUser
		}

		msg := models.Message{
			ConversationID: conv.ID,
			SenderRole:     senderRole,
			Body:           input.Body,
		}
		if err := db.Create(&msg).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("create message: %w", err))
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// GET /admin/conversations (staff)
func ListConversations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var convs []models.Conversation
		err := db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at, id")
		}).Order("updated_at DESC").Find(&convs).Error
		if err != nil {
			apperr.Respond(c, fmt.Errorf("list conversations: %w", err))
			return
		}
		c.JSON(http.StatusOK, convs)
	}
}

// POST /admin/conversations/:id/messages (staff)
func StaffReply(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input MessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("body is required"))
			return
		}

		var conv models.Conversation
		if err := db.First(&conv, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("conversation: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load conversation: %w", err))
			return
		}

		role, _ := c.Get("role")
		senderRole, _ := role.(models.Role)

		msg := models.Message{
			ConversationID: conv.ID,
			SenderRole:     senderRole,
			Body:           input.Body,
		}
		if err := db.Create(&msg).Error; err != nil {
			apperr.Respond(c, fmt.Errorf("create message: %w", err))
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}
