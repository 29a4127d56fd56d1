package models

import (
	"time"
)

// Comment is a user-submitted comment on a venue. Comments are user-owned
// state; the sync engine must never touch them.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VenueID   uint      `gorm:"not null;index" json:"venue_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Comment model
func (Comment) TableName() string {
	return "comments"
}
