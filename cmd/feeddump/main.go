// Command feeddump downloads the live LCSD feeds once and writes the
// normalized JSON snapshots consumed by local-data mode.
package main

import (
	"context"
	"log"
	"sync"

	"go.uber.org/zap"

	"culturemap/internal/config"
	"culturemap/internal/lcsd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	client := lcsd.NewClient(logger, cfg.Feed.VenueURL, cfg.Feed.EventURL)
	ctx := context.Background()

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
		venues, venueErr = client.FetchVenues(ctx)
	}()
	go func() {
		defer wg.Done()
		events, eventErr = client.FetchEvents(ctx)
	}()
	wg.Wait()

	if venueErr != nil {
		logger.Fatal("failed to fetch venue feed", zap.Error(venueErr))
	}
	if eventErr != nil {
		logger.Fatal("failed to fetch event feed", zap.Error(eventErr))
	}

	if err := lcsd.WriteSnapshot(cfg.Feed.DataDir, venues, events); err != nil {
		logger.Fatal("failed to write snapshots", zap.Error(err))
	}

	logger.Info("snapshots written",
		zap.String("dir", cfg.Feed.DataDir),
		zap.Int("venues", len(venues)),
		zap.Int("events", len(events)))
}
