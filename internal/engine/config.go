package engine

import (
	"net/http"
	"time"
)

// UserAgentBot identifies API calls that do not need a browser identity.
const UserAgentBot = "go_bias/1.0 (+https://github.com/anatolykoptev/go_bias)"

// Config holds all engine configuration.
type Config struct {
	WatchBaseURL          string // watch-page URL prefix, video id is appended
	DataAPIBase           string
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string // secondary key, tried on quota errors
	BiasFile              string // path to the media-bias JSON
	DataDir               string // checkpoint + tracker directory
	FetchTimeout          time.Duration
	PauseMin              time.Duration // floor of the pause between watch-page fetches
	PauseMax              time.Duration
	MineDays              int // how far back channel listings go
	HTTPClient            *http.Client
	BrowserClient         *BrowserClient // nil = plain HTTP client with browser headers
}

var cfg = Config{
	WatchBaseURL: "https://www.youtube.com/watch?v=",
	DataAPIBase:  "https://www.googleapis.com/youtube/v3",
	FetchTimeout: 10 * time.Second,
	PauseMin:     1 * time.Second,
	PauseMax:     3 * time.Second,
	HTTPClient:   http.DefaultClient,
}

// Cfg exposes the engine configuration for sub-packages (scraper, youtube, campaign).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.WatchBaseURL == "" {
		c.WatchBaseURL = "https://www.youtube.com/watch?v="
	}
	if c.DataAPIBase == "" {
		c.DataAPIBase = "https://www.googleapis.com/youtube/v3"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	cfg = c
	Cfg = &cfg
}
