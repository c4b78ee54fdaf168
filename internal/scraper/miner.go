// Package scraper mines the "watch next" panel of YouTube watch pages.
//
// The pipeline is fetch → extract → parse: FetchWatchPage retrieves raw
// markup, ExtractInitialData isolates the embedded ytInitialData JSON blob,
// and ParseRecommendations walks it into ordered Recommendation records.
// Each stage fails fast with its own error kind (TransportError,
// ExtractionError, ParseError); retry policy belongs to the caller.
package scraper

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_bias/internal/engine"
)

// Miner fetches a watch page and returns its recommendations.
// Stateless across calls; safe to reuse for many video ids.
type Miner struct {
	baseURL string
	client  *http.Client
	browser *engine.BrowserClient
	timeout time.Duration
}

// Option customizes a Miner.
type Option func(*Miner)

// WithBaseURL overrides the watch-page URL prefix. Used by tests.
func WithBaseURL(base string) Option {
	return func(m *Miner) { m.baseURL = base }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Miner) { m.client = c }
}

// WithBrowserClient sets the stealth browser client. nil disables it.
func WithBrowserClient(bc *engine.BrowserClient) Option {
	return func(m *Miner) { m.browser = bc }
}

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Miner) { m.timeout = d }
}

// NewMiner builds a Miner from the engine configuration.
func NewMiner(opts ...Option) *Miner {
	m := &Miner{
		baseURL: engine.Cfg.WatchBaseURL,
		client:  engine.Cfg.HTTPClient,
		browser: engine.Cfg.BrowserClient,
		timeout: engine.Cfg.FetchTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetRecommendations fetches the watch page for videoID and returns its
// "watch next" recommendations in presentation order. Errors from the
// fetch, extract, and parse stages propagate unchanged.
func (m *Miner) GetRecommendations(ctx context.Context, videoID string) ([]Recommendation, error) {
	markup, err := m.FetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	data, err := ExtractInitialData(markup)
	if err != nil {
		engine.IncrExtractErrors()
		return nil, err
	}
	recs, err := ParseRecommendations(data)
	if err != nil {
		engine.IncrParseErrors()
		return nil, err
	}
	return recs, nil
}

// IsStructureChange reports whether err signals an upstream schema change
// (a ParseError). Persistent extraction failures usually mean the same.
func IsStructureChange(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
