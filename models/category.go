package models

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Slug     string    `gorm:"uniqueIndex;not null" json:"slug"`
	Ord      int       `gorm:"default:0" json:"ord"`
	Active   bool      `gorm:"default:true" json:"active"`
	Products []Product `json:"products,omitempty"`
}
