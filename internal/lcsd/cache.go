package lcsd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	venueSnapshotFile = "venues.json"
	eventSnapshotFile = "events.json"
)

// LoadSnapshot reads previously saved normalized feeds from dataDir.
// Used in local-data mode to avoid hitting the live feeds.
func LoadSnapshot(dataDir string) ([]VenueRecord, []EventRecord, error) {
	var venues []VenueRecord
	if err := readJSON(filepath.Join(dataDir, venueSnapshotFile), &venues); err != nil {
		return nil, nil, fmt.Errorf("failed to load venue snapshot: %w", err)
	}

	var events []EventRecord
	if err := readJSON(filepath.Join(dataDir, eventSnapshotFile), &events); err != nil {
		return nil, nil, fmt.Errorf("failed to load event snapshot: %w", err)
	}

	return venues, events, nil
}

// WriteSnapshot saves normalized feeds to dataDir for later local-data runs
func WriteSnapshot(dataDir string, venues []VenueRecord, events []EventRecord) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dataDir, venueSnapshotFile), venues); err != nil {
		return fmt.Errorf("failed to write venue snapshot: %w", err)
	}
	if err := writeJSON(filepath.Join(dataDir, eventSnapshotFile), events); err != nil {
		return fmt.Errorf("failed to write event snapshot: %w", err)
	}

	return nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
