package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"culturemap/internal/models"
)

var ErrVenueNotFound = errors.New("venue not found")

// VenueService handles venue reads, comments and venue favorites
type VenueService struct {
	db *gorm.DB
}

// NewVenueService creates a new VenueService
func NewVenueService(db *gorm.DB) *VenueService {
	return &VenueService{db: db}
}

// ListVenues returns all venues with comments and hosted events populated
func (s *VenueService) ListVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := s.db.
		Preload("Comments.User").
		Preload("HostedEvents").
		Find(&venues).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

// GetVenue returns one venue by its upstream loc_id
func (s *VenueService) GetVenue(locID string) (*models.Venue, error) {
	var venue models.Venue
	err := s.db.
		Preload("Comments.User").
		Preload("HostedEvents").
		Where("loc_id = ?", locID).
		First(&venue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &venue, nil
}

// AddComment appends a user comment to the venue and returns the venue
// with comments populated
func (s *VenueService) AddComment(locID, username, body string) (*models.Venue, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var venue models.Venue
	if err := s.db.Where("loc_id = ?", locID).First(&venue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	comment := models.Comment{
		VenueID: venue.ID,
		UserID:  user.ID,
		Body:    body,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return s.GetVenue(locID)
}

// ToggleFavorite adds the venue to the user's favorites, or removes it if
// already present. Returns the user with favorites populated.
func (s *VenueService) ToggleFavorite(locID, username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var venue models.Venue
	if err := s.db.Where("loc_id = ?", locID).First(&venue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Table("user_fav_venues").
		Where("user_id = ? AND venue_id = ?", user.ID, venue.ID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	assoc := s.db.Model(&user).Association("FavVenues")
	if count > 0 {
		if err := assoc.Delete(&venue); err != nil {
			return nil, fmt.Errorf("failed to remove favorite: %w", err)
		}
	} else {
		if err := assoc.Append(&venue); err != nil {
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
