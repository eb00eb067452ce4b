package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Staff reports whether the role carries the moderator/admin capability.
func (r Role) Staff() bool { return r == RoleModerator || r == RoleAdmin }

type User struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Role        Role      `gorm:"type:VARCHAR(20);default:'user'" json:"role"`
	Blocked     bool      `json:"blocked"`
	BlockReason string    `json:"block_reason,omitempty"`
	Address     Address   `gorm:"embedded" json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// Address model embedded in User
type Address struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}
