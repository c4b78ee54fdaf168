// go_bias — news-outlet recommendation bias miner.
//
// Mines recent uploads of a fixed list of news-outlet channels and scrapes
// each video's "watch next" panel, building a per-channel dataset of
// cross-outlet recommendation linkage for bias analysis. Channel listings
// come from the YouTube Data API; recommendations come from the watch page
// itself (the Data API does not expose them).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"

	"github.com/anatolykoptev/go_bias/internal/bias"
	"github.com/anatolykoptev/go_bias/internal/campaign"
	"github.com/anatolykoptev/go_bias/internal/engine"
	"github.com/anatolykoptev/go_bias/internal/scraper"
	"github.com/anatolykoptev/go_bias/internal/youtube"
)

var version = "dev"

func main() {
	initEngine()
	ctx := context.Background()

	repo, err := bias.Load(engine.Cfg.BiasFile)
	if err != nil {
		slog.Error("loading media-bias file", slog.Any("error", err))
		os.Exit(1)
	}
	channels := repo.AllOutlets()
	slog.Info("starting go_bias",
		slog.String("version", version),
		slog.Int("outlets", len(channels)),
		slog.Int("mine_days", engine.Cfg.MineDays),
	)

	store, err := campaign.NewStore(filepath.Join(engine.Cfg.DataDir, "channel_bias"))
	if err != nil {
		slog.Error("opening checkpoint store", slog.Any("error", err))
		os.Exit(1)
	}

	opts := []campaign.Option{}
	tracker, err := campaign.OpenTracker(filepath.Join(engine.Cfg.DataDir, "tracker.db"))
	if err != nil {
		slog.Warn("run tracker disabled", slog.Any("error", err))
	} else {
		defer tracker.Close()
		opts = append(opts, campaign.WithTracker(tracker))
	}

	lister := newCachedLister(youtube.NewClient(), store, engine.Cfg.MineDays)
	camp := campaign.New(scraper.NewMiner(), store, opts...)

	out, err := camp.Run(ctx, channels, lister)
	if err != nil {
		slog.Error("mining run aborted", slog.Any("error", err))
	}

	total := 0
	for _, data := range out {
		total += len(data)
	}
	slog.Info("mining run finished",
		slog.Int("channels", len(out)),
		slog.Int("videos", total),
	)
	fmt.Print(engine.FormatMetrics())
}

func initEngine() {
	c := engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		BiasFile:              env.Str("BIAS_FILE", filepath.Join("data", "media-bias.json")),
		DataDir:               env.Str("DATA_DIR", "data"),
		FetchTimeout:          env.Duration("FETCH_TIMEOUT", 10*time.Second),
		PauseMin:              env.Duration("PAUSE_MIN", 1*time.Second),
		PauseMax:              env.Duration("PAUSE_MAX", 3*time.Second),
		MineDays:              env.Int("MINE_DAYS", 100),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := stealth.NewClient(stealth.WithTimeout(15))
	if err != nil {
		slog.Warn("stealth client init failed, using plain HTTP client", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)
}

// cachedLister lists a channel's uploads in the mining window through the
// Data API, caching listings in the data dir so an interrupted run does
// not re-spend API quota on channels it already listed.
type cachedLister struct {
	yt         *youtube.Client
	store      *campaign.Store
	cache      map[string][]string
	start, end time.Time
}

func newCachedLister(yt *youtube.Client, store *campaign.Store, days int) *cachedLister {
	cached, err := store.LoadListing()
	if err != nil {
		slog.Warn("listing cache unreadable, starting fresh", slog.Any("error", err))
	}
	if cached == nil {
		cached = map[string][]string{}
	}
	end := time.Now().UTC()
	return &cachedLister{
		yt:    yt,
		store: store,
		cache: cached,
		start: end.AddDate(0, 0, -days),
		end:   end,
	}
}

func (l *cachedLister) ChannelVideoIDs(ctx context.Context, channelID string) ([]string, error) {
	if ids, ok := l.cache[channelID]; ok {
		return ids, nil
	}
	videos, err := l.yt.VideosInTimeframe(ctx, channelID, l.start, l.end)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	l.cache[channelID] = ids
	if err := l.store.SaveListing(l.cache); err != nil {
		slog.Warn("saving listing cache", slog.Any("error", err))
	}
	return ids, nil
}
