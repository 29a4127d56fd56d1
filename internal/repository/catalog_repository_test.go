package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"culturemap/internal/database"
	"culturemap/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestFindOrCreateVenue(t *testing.T) {
	repo := NewCatalogRepository(setupTestDB(t))
	ctx := context.Background()

	first, created, err := repo.FindOrCreateVenue(ctx, &models.Venue{LocID: "36", Name: "City Hall"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	// Second write with the same loc_id must return the stored row untouched
	second, created, err := repo.FindOrCreateVenue(ctx, &models.Venue{LocID: "36", Name: "Renamed Hall"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "City Hall", second.Name)
}

func TestCreateEventIfAbsent(t *testing.T) {
	repo := NewCatalogRepository(setupTestDB(t))
	ctx := context.Background()

	venue, _, err := repo.FindOrCreateVenue(ctx, &models.Venue{LocID: "36", Name: "City Hall"})
	require.NoError(t, err)

	first, created, err := repo.CreateEventIfAbsent(ctx, &models.Event{EventID: "100", Name: "Concert", VenueID: venue.ID})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.CreateEventIfAbsent(ctx, &models.Event{EventID: "100", Name: "Changed", VenueID: venue.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Concert", second.Name)
}

func TestFindOrCreateUser(t *testing.T) {
	repo := NewCatalogRepository(setupTestDB(t))
	ctx := context.Background()

	_, created, err := repo.FindOrCreateUser(ctx, &models.User{Username: "admin", Password: "h", Type: models.UserTypeAdmin})
	require.NoError(t, err)
	assert.True(t, created)

	existing, created, err := repo.FindOrCreateUser(ctx, &models.User{Username: "admin", Password: "other", Type: models.UserTypeUser})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.UserTypeAdmin, existing.Type)
}

func TestFindOrCreateVenueConcurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.FindOrCreateVenue(ctx, &models.Venue{LocID: "36", Name: "City Hall"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	db.Model(&models.Venue{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteAllData(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	venue, _, err := repo.FindOrCreateVenue(ctx, &models.Venue{LocID: "36", Name: "City Hall"})
	require.NoError(t, err)
	_, _, err = repo.CreateEventIfAbsent(ctx, &models.Event{EventID: "100", Name: "Concert", VenueID: venue.ID})
	require.NoError(t, err)
	user, _, err := repo.FindOrCreateUser(ctx, &models.User{Username: "alice", Password: "h", Type: models.UserTypeUser})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{VenueID: venue.ID, UserID: user.ID, Body: "nice"}).Error)
	require.NoError(t, db.Model(user).Association("FavVenues").Append(venue))

	require.NoError(t, repo.DeleteAllData(ctx))

	for _, model := range []interface{}{&models.Venue{}, &models.Event{}, &models.User{}, &models.Comment{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T records must be gone", model)
	}
}
