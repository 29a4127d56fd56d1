package models

import (
	"time"
)

const (
	UserTypeAdmin = "admin"
	UserTypeUser  = "user"
)

// User represents an account in the system. Password holds a bcrypt hash
// and is never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Type      string    `gorm:"size:20;not null;default:user" json:"type"`
	FavVenues []Venue   `gorm:"many2many:user_fav_venues" json:"fav_location,omitempty"`
	FavEvents []Event   `gorm:"many2many:user_fav_events" json:"fav_event,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the admin type.
func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
