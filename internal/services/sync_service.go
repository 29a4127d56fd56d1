package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"culturemap/internal/catalog"
	"culturemap/internal/lcsd"
	"culturemap/internal/models"
	"culturemap/internal/repository"

	"go.uber.org/zap"
)

// FeedSource supplies normalized venue and event records. Satisfied by
// *lcsd.Client in production and by fakes in tests.
type FeedSource interface {
	FetchVenues(ctx context.Context) ([]lcsd.VenueRecord, error)
	FetchEvents(ctx context.Context) ([]lcsd.EventRecord, error)
}

// SyncOptions controls one reconciliation pass.
type SyncOptions struct {
	// ResetData wipes all venue/event/comment/user records before the
	// pass. Controlled re-initialization only.
	ResetData bool
	// UseLocalData reads the JSON snapshots from the data dir instead of
	// fetching the live feeds.
	UseLocalData bool
}

// SyncService runs one reconciliation pass: fetch both feeds, restrict
// them to the allow-list, upsert venues, then upsert events against the
// venue mapping built in the same pass. Re-running the pass against the
// same or newer upstream data never creates duplicates, and concurrent
// passes are safe because creation is atomic per natural identifier.
type SyncService struct {
	repo    *repository.CatalogRepository
	feeds   FeedSource
	allowed catalog.AllowList
	dataDir string
	logger  *zap.Logger
}

func NewSyncService(repo *repository.CatalogRepository, feeds FeedSource, allowed catalog.AllowList, dataDir string, logger *zap.Logger) *SyncService {
	return &SyncService{
		repo:    repo,
		feeds:   feeds,
		allowed: allowed,
		dataDir: dataDir,
		logger:  logger,
	}
}

// Run executes one full pass. A failed feed aborts that feed's entities
// only; the venue feed failing also skips the event stage, because events
// can only resolve their venue through the mapping built in the same
// pass. Errors are reported, never panicked, so callers can log and move
// on.
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) error {
	if opts.ResetData {
		s.logger.Warn("reset requested, deleting all existing data")
		if err := s.repo.DeleteAllData(ctx); err != nil {
			return fmt.Errorf("failed to reset data: %w", err)
		}
	}

	venues, events, venueErr, eventErr := s.loadFeeds(ctx, opts.UseLocalData)

	var errs []error

	if venueErr != nil {
		s.logger.Error("venue feed unavailable, skipping venue and event stages", zap.Error(venueErr))
		errs = append(errs, venueErr)
		if eventErr != nil {
			errs = append(errs, eventErr)
		}
	} else {
		venueIDs, err := s.reconcileVenues(ctx, catalog.FilterVenues(venues, s.allowed))
		if err != nil {
			errs = append(errs, err)
		}

		if eventErr != nil {
			s.logger.Error("event feed unavailable, skipping event stage", zap.Error(eventErr))
			errs = append(errs, eventErr)
		} else if err := s.reconcileEvents(ctx, catalog.FilterEvents(events, s.allowed), venueIDs); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.seedUsers(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("sync pass finished with errors: %v", errs)
	}

	s.logger.Info("sync pass completed")
	return nil
}

// loadFeeds fetches both feeds concurrently, or reads the local snapshots
// in local-data mode. Each feed fails as a whole; there are no partial
// results.
func (s *SyncService) loadFeeds(ctx context.Context, useLocalData bool) ([]lcsd.VenueRecord, []lcsd.EventRecord, error, error) {
	if useLocalData {
		venues, events, err := lcsd.LoadSnapshot(s.dataDir)
		if err != nil {
			return nil, nil, err, err
		}
		s.logger.Info("loaded feeds from local snapshots",
			zap.Int("venues", len(venues)),
			zap.Int("events", len(events)))
		return venues, events, nil, nil
	}

	var (
		wg       sync.WaitGroup
		venues   []lcsd.VenueRecord
		events   []lcsd.EventRecord
		venueErr error
		eventErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		venues, venueErr = s.feeds.FetchVenues(ctx)
	}()
	go func() {
		defer wg.Done()
		events, eventErr = s.feeds.FetchEvents(ctx)
	}()
	wg.Wait()

	return venues, events, venueErr, eventErr
}

// reconcileVenues upserts the filtered venues concurrently and returns the
// mapping from upstream loc_id to the stored venue's primary key for every
// venue touched in this pass. Existing venues are left untouched so
// user-owned state (comments, favorites) survives re-syncs. The mutex
// guards only the in-memory map write; it is never held across a store
// call.
func (s *SyncService) reconcileVenues(ctx context.Context, records []lcsd.VenueRecord) (map[string]uint, error) {
	venueIDs := make(map[string]uint, len(records))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	errChan := make(chan error, len(records))

	for _, record := range records {
		wg.Add(1)
		go func(rec lcsd.VenueRecord) {
			defer wg.Done()

			stored, created, err := s.repo.FindOrCreateVenue(ctx, &models.Venue{
				LocID:     rec.LocID,
				Name:      rec.Name,
				Latitude:  rec.Coordinate.Latitude,
				Longitude: rec.Coordinate.Longitude,
			})
			if err != nil {
				errChan <- err
				return
			}

			if created {
				s.logger.Info("venue created", zap.String("loc_id", rec.LocID), zap.String("name", rec.Name))
			}

			mu.Lock()
			venueIDs[rec.LocID] = stored.ID
			mu.Unlock()
		}(record)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		s.logger.Error("venue upsert failed", zap.Error(err))
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return venueIDs, fmt.Errorf("venue stage finished with errors: %v", errs)
	}

	return venueIDs, nil
}

// reconcileEvents upserts the filtered events concurrently. An event whose
// venue was not mapped in this pass cannot be created; it is skipped and
// logged, not treated as a failure, and the next pass retries it
// naturally. Events already in the store are never modified.
func (s *SyncService) reconcileEvents(ctx context.Context, records []lcsd.EventRecord, venueIDs map[string]uint) error {
	var wg sync.WaitGroup
	errChan := make(chan error, len(records))

	for _, record := range records {
		wg.Add(1)
		go func(rec lcsd.EventRecord) {
			defer wg.Done()

			venueID, ok := venueIDs[rec.LocID]
			if !ok {
				s.logger.Warn("skipping event with unresolved venue",
					zap.String("event_id", rec.EventID),
					zap.String("loc_id", rec.LocID))
				return
			}

			_, created, err := s.repo.CreateEventIfAbsent(ctx, &models.Event{
				EventID:     rec.EventID,
				Name:        rec.Name,
				VenueID:     venueID,
				Date:        rec.Date,
				Description: rec.Description,
				Organizer:   rec.Organizer,
				Price:       rec.Price,
			})
			if err != nil {
				errChan <- err
				return
			}

			if created {
				s.logger.Info("event created", zap.String("event_id", rec.EventID), zap.String("name", rec.Name))
			}
		}(record)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		s.logger.Error("event upsert failed", zap.Error(err))
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("event stage finished with errors: %v", errs)
	}

	return nil
}

type seedUser struct {
	Username string `json:"username"`
	Password string `json:"password"` // bcrypt hash
	Type     string `json:"type"`
}

// seedUsers upserts the static accounts from users.json in the data dir.
// The file is optional; seeding is skipped when it does not exist.
func (s *SyncService) seedUsers(ctx context.Context) error {
	path := filepath.Join(s.dataDir, "users.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read users file: %w", err)
	}

	var users []seedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to parse users file: %w", err)
	}

	for _, u := range users {
		userType := u.Type
		if userType != models.UserTypeAdmin {
			userType = models.UserTypeUser
		}

		_, created, err := s.repo.FindOrCreateUser(ctx, &models.User{
			Username: u.Username,
			Password: u.Password,
			Type:     userType,
		})
		if err != nil {
			return err
		}
		if created {
			s.logger.Info("user seeded", zap.String("username", u.Username), zap.String("type", userType))
		}
	}

	return nil
}
