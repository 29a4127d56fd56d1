package repository

import (
	"context"
	"fmt"

	"culturemap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository is the store surface the sync engine writes through.
// Creation keyed on a natural identifier is a single atomic statement
// (ON CONFLICT DO NOTHING on the unique index), so two concurrent sync
// passes cannot create duplicates: the second writer observes the existing
// row and takes the skip path.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindOrCreateVenue inserts the venue unless a row with the same loc_id
// already exists, then returns the stored row. The boolean reports whether
// this call created it. Existing venues are returned untouched; comments
// and favorites are user-owned state.
func (r *CatalogRepository) FindOrCreateVenue(ctx context.Context, venue *models.Venue) (*models.Venue, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "loc_id"}},
			DoNothing: true,
		}).
		Create(venue)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to upsert venue %s: %w", venue.LocID, result.Error)
	}

	if result.RowsAffected > 0 {
		return venue, true, nil
	}

	var existing models.Venue
	if err := r.db.WithContext(ctx).Where("loc_id = ?", venue.LocID).First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load venue %s: %w", venue.LocID, err)
	}
	return &existing, false, nil
}

// CreateEventIfAbsent inserts the event unless a row with the same
// event_id already exists, then returns the stored row. Writing the event
// row writes both ends of the venue association at once: venue_id is the
// event's venue reference and the row itself is the venue's hosted_event
// entry.
func (r *CatalogRepository) CreateEventIfAbsent(ctx context.Context, event *models.Event) (*models.Event, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to upsert event %s: %w", event.EventID, result.Error)
	}

	if result.RowsAffected > 0 {
		return event, true, nil
	}

	var existing models.Event
	if err := r.db.WithContext(ctx).Where("event_id = ?", event.EventID).First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load event %s: %w", event.EventID, err)
	}
	return &existing, false, nil
}

// FindOrCreateUser inserts the user unless the username is already taken,
// used for static account seeding.
func (r *CatalogRepository) FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).
		Create(user)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to upsert user %s: %w", user.Username, result.Error)
	}

	if result.RowsAffected > 0 {
		return user, true, nil
	}

	var existing models.User
	if err := r.db.WithContext(ctx).Where("username = ?", user.Username).First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load user %s: %w", user.Username, err)
	}
	return &existing, false, nil
}

// DeleteAllData wipes every venue, event, comment and user record along
// with the favorite join tables. Reset mode only; never part of a normal
// sync pass.
func (r *CatalogRepository) DeleteAllData(ctx context.Context) error {
	db := r.db.WithContext(ctx)

	for _, table := range []string{"user_fav_venues", "user_fav_events"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Event{},
		&models.Venue{},
		&models.User{},
	} {
		if err := session.Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete %T records: %w", model, err)
		}
	}

	return nil
}
