package lcsd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client downloads the LCSD venue and event XML feeds. A failed download
// or parse aborts that feed as a whole; the client never returns partial
// results.
type Client struct {
	httpClient *http.Client
	venueURL   string
	eventURL   string
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger, venueURL, eventURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		venueURL: venueURL,
		eventURL: eventURL,
		logger:   logger,
	}
}

// FetchVenues downloads and normalizes the venue feed
func (c *Client) FetchVenues(ctx context.Context) ([]VenueRecord, error) {
	data, err := c.download(ctx, c.venueURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue feed: %w", err)
	}

	venues, err := ParseVenueFeed(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse venue feed: %w", err)
	}

	c.logger.Info("venue feed fetched", zap.Int("venues", len(venues)))
	return venues, nil
}

// FetchEvents downloads and normalizes the event feed
func (c *Client) FetchEvents(ctx context.Context) ([]EventRecord, error) {
	data, err := c.download(ctx, c.eventURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event feed: %w", err)
	}

	events, err := ParseEventFeed(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event feed: %w", err)
	}

	c.logger.Info("event feed fetched", zap.Int("events", len(events)))
	return events, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	return body, nil
}
