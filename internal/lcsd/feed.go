package lcsd

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Fallback placeholders. Upstream feeds are not validated, so every field
// defaults instead of failing. Description, organizer and price distinguish
// a present-but-empty element from one that is missing entirely, so
// downstream consumers can tell "confirmed empty" from "not supplied".
const (
	PlaceholderVenueName = "empty location name"
	PlaceholderEventName = "empty event name"
	PlaceholderLocID     = "empty loc id"
	PlaceholderDate      = "empty date"

	DescriptionNotAvailable      = "Description Not Available"
	DescriptionFieldNotAvailable = "Description Field Not Available"
	OrganizerNotAvailable        = "Organizer Not Available"
	OrganizerFieldNotAvailable   = "Organizer Field Not Available"
	PriceNotAvailable            = "Price Not Available"
	PriceFieldNotAvailable       = "Price Field Not Available"
)

// Coordinate is a geographic point. Missing or malformed upstream values
// default to 0.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VenueRecord is a normalized venue from the venue feed
type VenueRecord struct {
	LocID      string     `json:"loc_id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// EventRecord is a normalized event from the event feed. LocID carries the
// upstream venue identifier; it is resolved against the store during
// reconciliation, not here. Date and Price are verbatim upstream strings.
type EventRecord struct {
	EventID     string `json:"event_id"`
	Name        string `json:"name"`
	LocID       string `json:"loc_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Organizer   string `json:"organizer"`
	Price       string `json:"price"`
}

type venueFeed struct {
	XMLName xml.Name    `xml:"venues"`
	Venues  []venueNode `xml:"venue"`
}

// Pointer fields distinguish an absent element (nil) from a present but
// empty one.
type venueNode struct {
	ID        string  `xml:"id,attr"`
	Name      *string `xml:"venuee"`
	Latitude  *string `xml:"latitude"`
	Longitude *string `xml:"longitude"`
}

type eventFeed struct {
	XMLName xml.Name    `xml:"events"`
	Events  []eventNode `xml:"event"`
}

type eventNode struct {
	ID        string  `xml:"id,attr"`
	Title     *string `xml:"titlee"`
	VenueID   *string `xml:"venueid"`
	PreDate   *string `xml:"predateE"`
	Desc      *string `xml:"desce"`
	Presenter *string `xml:"presenterorge"`
	Price     *string `xml:"pricee"`
}

// ParseVenueFeed parses the venue XML document into normalized records
func ParseVenueFeed(data []byte) ([]VenueRecord, error) {
	var feed venueFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("malformed venue feed: %w", err)
	}

	venues := make([]VenueRecord, 0, len(feed.Venues))
	for _, node := range feed.Venues {
		venues = append(venues, VenueRecord{
			LocID: node.ID,
			Name:  stringOr(node.Name, PlaceholderVenueName),
			Coordinate: Coordinate{
				Latitude:  floatOrZero(node.Latitude),
				Longitude: floatOrZero(node.Longitude),
			},
		})
	}

	return venues, nil
}

// ParseEventFeed parses the event XML document into normalized records
func ParseEventFeed(data []byte) ([]EventRecord, error) {
	var feed eventFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("malformed event feed: %w", err)
	}

	events := make([]EventRecord, 0, len(feed.Events))
	for _, node := range feed.Events {
		events = append(events, EventRecord{
			EventID:     node.ID,
			Name:        stringOr(node.Title, PlaceholderEventName),
			LocID:       stringOr(node.VenueID, PlaceholderLocID),
			Date:        stringOr(node.PreDate, PlaceholderDate),
			Description: presentOr(node.Desc, DescriptionNotAvailable, DescriptionFieldNotAvailable),
			Organizer:   parseOrganizer(node.Presenter),
			Price:       presentOr(node.Price, PriceNotAvailable, PriceFieldNotAvailable),
		})
	}

	return events, nil
}

// parseOrganizer derives the organizer from the upstream presenter field.
// The provider prepends boilerplate like "Presented by"; everything after
// the first "by " is the organizer proper.
func parseOrganizer(presenter *string) string {
	if presenter == nil {
		return OrganizerFieldNotAvailable
	}
	if *presenter == "" {
		return OrganizerNotAvailable
	}
	if _, after, found := strings.Cut(*presenter, "by "); found {
		return after
	}
	return *presenter
}

func stringOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

// presentOr keeps the value if non-empty, otherwise picks the
// present-but-empty or field-absent placeholder.
func presentOr(value *string, emptyFallback, absentFallback string) string {
	if value == nil {
		return absentFallback
	}
	if *value == "" {
		return emptyFallback
	}
	return *value
}

func floatOrZero(value *string) float64 {
	if value == nil {
		return 0
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(*value), 64)
	if err != nil {
		return 0
	}
	return parsed
}
