// Package campaign drives a mining run over a list of outlet channels:
// list each channel's videos, scrape the "watch next" panel of every video,
// and persist the per-channel dataset as a checkpoint. A channel whose
// checkpoint already holds data is never re-fetched.
package campaign

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_bias/internal/engine"
	"github.com/anatolykoptev/go_bias/internal/scraper"
)

// Source yields the recommendations surfaced next to one video.
type Source interface {
	GetRecommendations(ctx context.Context, videoID string) ([]scraper.Recommendation, error)
}

// VideoLister lists the video ids of a channel to mine.
type VideoLister interface {
	ChannelVideoIDs(ctx context.Context, channelID string) ([]string, error)
}

// Failure records one video id that failed both mining attempts. Failed
// ids are absent from the dataset; they live in logs and the tracker only.
type Failure struct {
	VideoID string `json:"video_id"`
	First   string `json:"first_error"`
	Second  string `json:"second_error"`
}

// progressEvery controls how often the loop logs coarse progress.
const progressEvery = 100

// Campaign mines recommendation datasets channel by channel, one video at
// a time. Fully sequential: the pacing between watch-page fetches is the
// whole point of staying under the platform's informal rate tolerance.
type Campaign struct {
	source  Source
	store   *Store
	tracker *Tracker // nil disables run tracking
	limiter *rate.Limiter
	jitter  func() time.Duration
}

// Option customizes a Campaign.
type Option func(*Campaign)

// WithTracker attaches a run tracker.
func WithTracker(t *Tracker) Option {
	return func(c *Campaign) { c.tracker = t }
}

// WithLimiter overrides the pacing floor. Tests pass rate.NewLimiter(rate.Inf, 1).
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Campaign) { c.limiter = l }
}

// WithJitter overrides the randomized extra pause.
func WithJitter(fn func() time.Duration) Option {
	return func(c *Campaign) { c.jitter = fn }
}

// New builds a Campaign paced per the engine configuration: a hard floor
// of PauseMin between successive fetches plus a random slice of the
// PauseMin..PauseMax window.
func New(source Source, store *Store, opts ...Option) *Campaign {
	c := &Campaign{
		source:  source,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(engine.Cfg.PauseMin), 1),
		jitter:  randomJitter(engine.Cfg.PauseMin, engine.Cfg.PauseMax),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func randomJitter(min, max time.Duration) func() time.Duration {
	if max <= min {
		return func() time.Duration { return 0 }
	}
	span := int64(max - min)
	return func() time.Duration { return time.Duration(rand.Int64N(span)) }
}

// pace blocks until the next fetch may proceed, honoring ctx.
func (c *Campaign) pace(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	j := c.jitter()
	if j <= 0 {
		return nil
	}
	t := time.NewTimer(j)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MineChannel scrapes recommendations for every video id of one channel.
// Each id gets at most two attempts: one call, and on any error exactly one
// immediate retry. An id failing twice is recorded as a Failure and skipped;
// it contributes no entry to the dataset and the run moves on. A paced
// pause separates successive ids regardless of outcome.
//
// The partial dataset accumulated so far is returned alongside a context
// error if ctx is cancelled mid-run.
func (c *Campaign) MineChannel(ctx context.Context, channelID string, videoIDs []string) (ChannelBias, []Failure, error) {
	result := make(ChannelBias, len(videoIDs))
	var failures []Failure
	total := len(videoIDs)

	for i, id := range videoIDs {
		recs, err := c.source.GetRecommendations(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return result, failures, ctx.Err()
			}
			var retryErr error
			recs, retryErr = c.source.GetRecommendations(ctx, id)
			if retryErr != nil {
				slog.Warn("mining video failed twice",
					slog.String("channel", channelID),
					slog.String("video", id),
					slog.String("first", err.Error()),
					slog.String("second", retryErr.Error()),
				)
				failures = append(failures, Failure{VideoID: id, First: err.Error(), Second: retryErr.Error()})
				engine.IncrFailedVideos()
				if scraper.IsStructureChange(retryErr) {
					slog.Error("watch-next structure changed upstream; expect every video to fail",
						slog.String("video", id))
				}
			} else {
				result[id] = recs
				engine.IncrMinedVideos()
			}
		} else {
			result[id] = recs
			engine.IncrMinedVideos()
		}

		if (i+1)%progressEvery == 0 {
			slog.Info("mining progress",
				slog.String("channel", channelID),
				slog.Int("done", i+1),
				slog.Int("total", total),
			)
		}
		if err := c.pace(ctx); err != nil {
			return result, failures, err
		}
	}
	return result, failures, nil
}

// Run mines every channel in order. A channel whose checkpoint already
// holds a non-empty dataset is skipped — the presence of persisted data is
// the sole "completed" marker. Listing failures skip the channel; a mining
// abort (context cancellation) stops the run without writing a checkpoint,
// so the channel is retried next run.
func (c *Campaign) Run(ctx context.Context, channelIDs []string, lister VideoLister) (map[string]ChannelBias, error) {
	out := make(map[string]ChannelBias, len(channelIDs))

	var runID int64
	if c.tracker != nil {
		id, err := c.tracker.BeginRun(ctx)
		if err != nil {
			slog.Warn("run tracker unavailable", slog.Any("error", err))
			c.tracker = nil
		} else {
			runID = id
		}
	}

	mined, failed := 0, 0
	for _, channelID := range channelIDs {
		existing, err := c.store.Load(channelID)
		if err != nil {
			return out, err
		}
		if len(existing) > 0 {
			engine.IncrCheckpointSkips()
			slog.Info("channel already mined, skipping",
				slog.String("channel", channelID),
				slog.Int("videos", len(existing)),
			)
			out[channelID] = existing
			continue
		}

		ids, err := lister.ChannelVideoIDs(ctx, channelID)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			slog.Error("listing channel videos failed",
				slog.String("channel", channelID),
				slog.Any("error", err),
			)
			continue
		}

		slog.Info("mining channel",
			slog.String("channel", channelID),
			slog.Int("videos", len(ids)),
		)
		data, failures, mineErr := c.MineChannel(ctx, channelID, ids)
		if c.tracker != nil {
			for _, f := range failures {
				if err := c.tracker.RecordFailure(ctx, runID, channelID, f); err != nil {
					slog.Warn("recording failure", slog.Any("error", err))
				}
			}
		}
		mined += len(data)
		failed += len(failures)
		if mineErr != nil {
			c.finishRun(ctx, runID, len(out), mined, failed)
			return out, mineErr
		}

		if err := c.store.Save(channelID, data); err != nil {
			return out, err
		}
		out[channelID] = data
	}

	c.finishRun(ctx, runID, len(out), mined, failed)
	return out, nil
}

func (c *Campaign) finishRun(ctx context.Context, runID int64, channels, mined, failed int) {
	if c.tracker == nil {
		return
	}
	if err := c.tracker.FinishRun(ctx, runID, channels, mined, failed); err != nil {
		slog.Warn("finishing run record", slog.Any("error", err))
	}
}
