package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"culturemap/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventService handles event reads, administrative edits and event
// favorites. Administrative create/delete maintain the venue
// back-reference through the events.venue_id foreign key.
type EventService struct {
	db *gorm.DB
}

// NewEventService creates a new EventService
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// EventInput carries the editable event fields; loc_id names the hosting
// venue by its upstream identifier.
type EventInput struct {
	Name        string `json:"name"`
	LocID       string `json:"loc_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Organizer   string `json:"organizer"`
	Price       string `json:"price"`
}

// ListEvents returns all events with their venue populated
func (s *EventService) ListEvents() ([]models.Event, error) {
	var events []models.Event
	if err := s.db.Preload("Venue").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event by its event_id
func (s *EventService) GetEvent(eventID string) (*models.Event, error) {
	var event models.Event
	err := s.db.Preload("Venue").Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &event, nil
}

// CreateEvent creates an administrator-authored event at an existing
// venue. The generated event_id keeps these apart from feed events.
func (s *EventService) CreateEvent(input EventInput) (*models.Event, error) {
	var venue models.Venue
	if err := s.db.Where("loc_id = ?", input.LocID).First(&venue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	event := models.Event{
		EventID:     fmt.Sprintf("%s%d", uuid.NewString(), time.Now().UnixMilli()),
		Name:        input.Name,
		VenueID:     venue.ID,
		Date:        input.Date,
		Description: input.Description,
		Organizer:   input.Organizer,
		Price:       input.Price,
	}

	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &event, nil
}

// UpdateEvent applies the non-empty fields of input to an existing event.
// Changing loc_id moves the event to another venue, updating the
// back-reference on both venues at once.
func (s *EventService) UpdateEvent(eventID string, input EventInput) (*models.Event, error) {
	var event models.Event
	if err := s.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if input.Name != "" {
		event.Name = input.Name
	}
	if input.LocID != "" {
		var venue models.Venue
		if err := s.db.Where("loc_id = ?", input.LocID).First(&venue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		event.VenueID = venue.ID
	}
	if input.Date != "" {
		event.Date = input.Date
	}
	if input.Description != "" {
		event.Description = input.Description
	}
	if input.Organizer != "" {
		event.Organizer = input.Organizer
	}
	if input.Price != "" {
		event.Price = input.Price
	}

	if err := s.db.Save(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return &event, nil
}

// DeleteEvent removes an event; the venue's hosted_event set shrinks with
// it since the set is the inverse of the foreign key.
func (s *EventService) DeleteEvent(eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Exec("DELETE FROM user_fav_events WHERE event_id = ?", event.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to clear event favorites: %w", err)
	}
	if err := s.db.Delete(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	return &event, nil
}

// ToggleFavorite adds the event to the user's favorites, or removes it if
// already present. Returns the user with favorites populated.
func (s *EventService) ToggleFavorite(eventID, username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var event models.Event
	if err := s.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Table("user_fav_events").
		Where("user_id = ? AND event_id = ?", user.ID, event.ID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	assoc := s.db.Model(&user).Association("FavEvents")
	if count > 0 {
		if err := assoc.Delete(&event); err != nil {
			return nil, fmt.Errorf("failed to remove favorite: %w", err)
		}
	} else {
		if err := assoc.Append(&event); err != nil {
			return nil, fmt.Errorf("failed to add favorite: %w", err)
		}
	}

	var updated models.User
	if err := s.db.
		Preload("FavVenues").
		Preload("FavEvents").
		Where("id = ?", user.ID).
		First(&updated).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &updated, nil
}
