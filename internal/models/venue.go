package models

import (
	"time"
)

// Venue represents a physical venue ingested from the LCSD venue feed.
// LocID is the upstream identifier and the natural uniqueness key; the
// sync engine never rewrites an existing venue's fields.
type Venue struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	LocID        string    `gorm:"uniqueIndex;not null" json:"loc_id"`
	Name         string    `gorm:"size:500;not null" json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Comments     []Comment `gorm:"foreignKey:VenueID" json:"comments,omitempty"`
	HostedEvents []Event   `gorm:"foreignKey:VenueID" json:"hosted_event,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Venue model
func (Venue) TableName() string {
	return "venues"
}
