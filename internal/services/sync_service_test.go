package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"culturemap/internal/catalog"
	"culturemap/internal/database"
	"culturemap/internal/lcsd"
	"culturemap/internal/models"
	"culturemap/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	// A single connection so every goroutine sees the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type fakeFeeds struct {
	venues   []lcsd.VenueRecord
	events   []lcsd.EventRecord
	venueErr error
	eventErr error
}

func (f *fakeFeeds) FetchVenues(ctx context.Context) ([]lcsd.VenueRecord, error) {
	if f.venueErr != nil {
		return nil, f.venueErr
	}
	return f.venues, nil
}

func (f *fakeFeeds) FetchEvents(ctx context.Context) ([]lcsd.EventRecord, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return f.events, nil
}

func newTestSyncService(t *testing.T, db *gorm.DB, allowed []string, feeds *fakeFeeds) *SyncService {
	t.Helper()
	repo := repository.NewCatalogRepository(db)
	return NewSyncService(repo, feeds, catalog.NewAllowList(allowed), t.TempDir(), zap.NewNop())
}

func fixtureFeeds() *fakeFeeds {
	return &fakeFeeds{
		venues: []lcsd.VenueRecord{
			{LocID: "36", Name: "City Hall", Coordinate: lcsd.Coordinate{Latitude: 22.28, Longitude: 114.16}},
			{LocID: "40", Name: "Cultural Centre", Coordinate: lcsd.Coordinate{Latitude: 22.29, Longitude: 114.17}},
			{LocID: "87", Name: "Not chosen"},
		},
		events: []lcsd.EventRecord{
			{EventID: "100", Name: "Concert", LocID: "36", Date: "1 Mar 2024", Description: "desc", Organizer: "Arts Council", Price: "free"},
			{EventID: "101", Name: "Recital", LocID: "40", Date: "2 Mar 2024", Description: lcsd.DescriptionNotAvailable, Organizer: lcsd.OrganizerNotAvailable, Price: "$95"},
			{EventID: "102", Name: "Excluded show", LocID: "87"},
		},
	}
}

func TestSyncCreatesVenuesAndEvents(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestSyncService(t, db, []string{"36", "40"}, fixtureFeeds())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var venues []models.Venue
	require.NoError(t, db.Preload("HostedEvents").Order("loc_id").Find(&venues).Error)
	require.Len(t, venues, 2)

	assert.Equal(t, "City Hall", venues[0].Name)
	assert.InDelta(t, 22.28, venues[0].Latitude, 0.0001)
	require.Len(t, venues[0].HostedEvents, 1)
	assert.Equal(t, "100", venues[0].HostedEvents[0].EventID)

	var event models.Event
	require.NoError(t, db.Preload("Venue").Where("event_id = ?", "100").First(&event).Error)
	assert.Equal(t, "Concert", event.Name)
	// Verbatim upstream strings round-trip unchanged
	assert.Equal(t, "1 Mar 2024", event.Date)
	assert.Equal(t, "free", event.Price)
	require.NotNil(t, event.Venue)
	assert.Equal(t, "36", event.Venue.LocID)
}

func TestSyncAllowListEnforcement(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestSyncService(t, db, []string{"36"}, fixtureFeeds())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var venueCount int64
	db.Model(&models.Venue{}).Count(&venueCount)
	assert.Equal(t, int64(1), venueCount)

	var count int64
	db.Model(&models.Venue{}).Where("loc_id = ?", "87").Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Event{}).Where("event_id IN ?", []string{"101", "102"}).Count(&count)
	assert.Zero(t, count)
}

func TestSyncIdempotence(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestSyncService(t, db, []string{"36", "40"}, fixtureFeeds())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var firstVenues []models.Venue
	require.NoError(t, db.Order("loc_id").Find(&firstVenues).Error)
	var firstEvents []models.Event
	require.NoError(t, db.Order("event_id").Find(&firstEvents).Error)

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var secondVenues []models.Venue
	require.NoError(t, db.Order("loc_id").Find(&secondVenues).Error)
	var secondEvents []models.Event
	require.NoError(t, db.Order("event_id").Find(&secondEvents).Error)

	assert.Equal(t, firstVenues, secondVenues)
	assert.Equal(t, firstEvents, secondEvents)

	// The back-reference set never grows on re-sync
	var venue models.Venue
	require.NoError(t, db.Preload("HostedEvents").Where("loc_id = ?", "36").First(&venue).Error)
	assert.Len(t, venue.HostedEvents, 1)
}

func TestSyncReferentialCompleteness(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestSyncService(t, db, []string{"36", "40"}, fixtureFeeds())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var events []models.Event
	require.NoError(t, db.Find(&events).Error)
	require.NotEmpty(t, events)

	for _, event := range events {
		var venue models.Venue
		require.NoError(t, db.Preload("HostedEvents").Where("id = ?", event.VenueID).First(&venue).Error,
			"event %s must reference a stored venue", event.EventID)

		found := false
		for _, hosted := range venue.HostedEvents {
			if hosted.ID == event.ID {
				found = true
			}
		}
		assert.True(t, found, "venue %s must list event %s", venue.LocID, event.EventID)
	}
}

func TestSyncSkipsEventWithUnresolvedVenue(t *testing.T) {
	db := setupTestDB(t)

	// "40" is allow-listed but missing from the venue feed, so its event
	// passes the filter yet cannot resolve a venue in this pass.
	feeds := &fakeFeeds{
		venues: []lcsd.VenueRecord{{LocID: "36", Name: "City Hall"}},
		events: []lcsd.EventRecord{
			{EventID: "100", Name: "Concert", LocID: "36"},
			{EventID: "200", Name: "Orphan", LocID: "40"},
		},
	}
	svc := newTestSyncService(t, db, []string{"36", "40"}, feeds)

	// A data-consistency gap is tolerated, not an error
	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var count int64
	db.Model(&models.Event{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Event{}).Where("event_id = ?", "200").Count(&count)
	assert.Zero(t, count)
}

func TestSyncConcurrentPassSafety(t *testing.T) {
	db := setupTestDB(t)

	feeds := &fakeFeeds{
		venues: []lcsd.VenueRecord{{LocID: "36", Name: "City Hall"}},
		events: []lcsd.EventRecord{{EventID: "100", Name: "Concert", LocID: "36"}},
	}
	svc := newTestSyncService(t, db, []string{"36"}, feeds)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Run(context.Background(), SyncOptions{}))
		}()
	}
	wg.Wait()

	var venueCount, eventCount int64
	db.Model(&models.Venue{}).Count(&venueCount)
	db.Model(&models.Event{}).Count(&eventCount)
	assert.Equal(t, int64(1), venueCount)
	assert.Equal(t, int64(1), eventCount)

	var venue models.Venue
	require.NoError(t, db.Preload("HostedEvents").Where("loc_id = ?", "36").First(&venue).Error)
	assert.Len(t, venue.HostedEvents, 1)
}

func TestSyncDoesNotClobberUserOwnedState(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestSyncService(t, db, []string{"36"}, fixtureFeeds())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var venue models.Venue
	require.NoError(t, db.Where("loc_id = ?", "36").First(&venue).Error)

	user := models.User{Username: "alice", Password: "x", Type: models.UserTypeUser}
	require.NoError(t, db.Create(&user).Error)
	comment := models.Comment{VenueID: venue.ID, UserID: user.ID, Body: "great acoustics"}
	require.NoError(t, db.Create(&comment).Error)

	// Upstream renames the venue; the engine must leave the stored record
	// untouched.
	feeds := fixtureFeeds()
	feeds.venues[0].Name = "Renamed Hall"
	renamed := newTestSyncService(t, db, []string{"36"}, feeds)
	require.NoError(t, renamed.Run(context.Background(), SyncOptions{}))

	var after models.Venue
	require.NoError(t, db.Preload("Comments").Where("loc_id = ?", "36").First(&after).Error)
	assert.Equal(t, "City Hall", after.Name)
	require.Len(t, after.Comments, 1)
	assert.Equal(t, "great acoustics", after.Comments[0].Body)
}

func TestSyncVenueFeedFailureSkipsBothStages(t *testing.T) {
	db := setupTestDB(t)

	feeds := fixtureFeeds()
	feeds.venueErr = errors.New("connection refused")
	svc := newTestSyncService(t, db, []string{"36", "40"}, feeds)

	require.Error(t, svc.Run(context.Background(), SyncOptions{}))

	var venueCount, eventCount int64
	db.Model(&models.Venue{}).Count(&venueCount)
	db.Model(&models.Event{}).Count(&eventCount)
	assert.Zero(t, venueCount)
	assert.Zero(t, eventCount)
}

func TestSyncEventFeedFailureKeepsVenueStage(t *testing.T) {
	db := setupTestDB(t)

	feeds := fixtureFeeds()
	feeds.eventErr = errors.New("connection refused")
	svc := newTestSyncService(t, db, []string{"36", "40"}, feeds)

	require.Error(t, svc.Run(context.Background(), SyncOptions{}))

	// The venue feed's pass is unaffected by the event feed failing
	var venueCount, eventCount int64
	db.Model(&models.Venue{}).Count(&venueCount)
	db.Model(&models.Event{}).Count(&eventCount)
	assert.Equal(t, int64(2), venueCount)
	assert.Zero(t, eventCount)
}

func TestSyncResetMode(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestSyncService(t, db, []string{"36", "40"}, fixtureFeeds())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	stale := models.User{Username: "stale", Password: "x", Type: models.UserTypeUser}
	require.NoError(t, db.Create(&stale).Error)

	require.NoError(t, svc.Run(context.Background(), SyncOptions{ResetData: true}))

	var userCount int64
	db.Model(&models.User{}).Where("username = ?", "stale").Count(&userCount)
	assert.Zero(t, userCount)

	// The pass after the wipe repopulates the catalog
	var venueCount int64
	db.Model(&models.Venue{}).Count(&venueCount)
	assert.Equal(t, int64(2), venueCount)
}

func TestSyncLocalDataMode(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	dataDir := t.TempDir()

	feeds := fixtureFeeds()
	require.NoError(t, lcsd.WriteSnapshot(dataDir, feeds.venues, feeds.events))

	// Live fetch must not be touched in local-data mode
	failing := &fakeFeeds{venueErr: errors.New("no network"), eventErr: errors.New("no network")}
	svc := NewSyncService(repo, failing, catalog.NewAllowList([]string{"36"}), dataDir, zap.NewNop())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{UseLocalData: true}))

	var venueCount int64
	db.Model(&models.Venue{}).Count(&venueCount)
	assert.Equal(t, int64(1), venueCount)
}

func TestSyncSeedsUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	dataDir := t.TempDir()

	usersJSON := `[
		{"username": "admin", "password": "$2b$10$hashhashhashhashhashha", "type": "admin"},
		{"username": "bob", "password": "$2b$10$hashhashhashhashhashhb", "type": "user"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "users.json"), []byte(usersJSON), 0o644))

	svc := NewSyncService(repo, fixtureFeeds(), catalog.NewAllowList([]string{"36"}), dataDir, zap.NewNop())

	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))
	require.NoError(t, svc.Run(context.Background(), SyncOptions{}))

	var users []models.User
	require.NoError(t, db.Order("username").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, models.UserTypeAdmin, users[0].Type)
	assert.Equal(t, models.UserTypeUser, users[1].Type)
}
