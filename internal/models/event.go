package models

import (
	"time"
)

// Event represents an event hosted at a venue. EventID is the upstream
// identifier and the natural uniqueness key. Date and Price carry the
// upstream strings verbatim; upstream values are inconsistent and
// non-numeric markers like "free" must round-trip unchanged.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"uniqueIndex;not null" json:"event_id"`
	Name        string    `gorm:"size:500;not null" json:"name"`
	VenueID     uint      `gorm:"not null;index" json:"venue_id"`
	Venue       *Venue    `gorm:"foreignKey:VenueID" json:"location,omitempty"`
	Date        string    `gorm:"size:500" json:"date"`
	Description string    `gorm:"type:text" json:"description"`
	Organizer   string    `gorm:"size:500" json:"organizer"`
	Price       string    `gorm:"size:200" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "events"
}
