package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"culturemap/internal/lcsd"
)

// AllowList is the operator-curated set of venue identifiers that may be
// ingested. Everything outside it is discarded before reaching storage.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from a slice of venue identifiers
func NewAllowList(locIDs []string) AllowList {
	allowed := make(AllowList, len(locIDs))
	for _, id := range locIDs {
		allowed[id] = struct{}{}
	}
	return allowed
}

// Contains reports whether the venue identifier is allow-listed
func (a AllowList) Contains(locID string) bool {
	_, ok := a[locID]
	return ok
}

// LoadAllowList reads the chosen-venue file, a JSON document of the form
// {"loc_id": ["40", "36", ...]}.
func LoadAllowList(path string) (AllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chosen venue file: %w", err)
	}

	var chosen struct {
		LocIDs []string `json:"loc_id"`
	}
	if err := json.Unmarshal(data, &chosen); err != nil {
		return nil, fmt.Errorf("failed to parse chosen venue file: %w", err)
	}

	return NewAllowList(chosen.LocIDs), nil
}

// FilterVenues returns the venues whose identifier is allow-listed
func FilterVenues(venues []lcsd.VenueRecord, allowed AllowList) []lcsd.VenueRecord {
	filtered := make([]lcsd.VenueRecord, 0, len(venues))
	for _, v := range venues {
		if allowed.Contains(v.LocID) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// FilterEvents returns the events whose upstream venue identifier is
// allow-listed
func FilterEvents(events []lcsd.EventRecord, allowed AllowList) []lcsd.EventRecord {
	filtered := make([]lcsd.EventRecord, 0, len(events))
	for _, e := range events {
		if allowed.Contains(e.LocID) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
