package models

import "time"

// Conversation is the single support thread between a user and staff.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"user_id"`
	Messages  []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index" json:"conversation_id"`
	SenderRole     Role      `gorm:"type:VARCHAR(20)" json:"sender_role"`
	Body           string    `gorm:"not null" json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}
