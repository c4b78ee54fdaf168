// Package youtube is a thin YouTube Data API v3 client covering the calls
// the mining campaign needs: resolving a channel's uploads playlist, paging
// through it, and pulling channel/video statistics. It is a quota-limited
// API, so the client supports a fallback key tried when the primary fails.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_bias/internal/engine"
)

// listingFailsafe caps how many playlist items a single listing walks.
// Some outlet channels have six-figure upload counts.
const listingFailsafe = 10000

// Client talks to the YouTube Data API v3.
type Client struct {
	baseURL     string
	apiKey      string
	fallbackKey string
	http        *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithKeys sets the primary and fallback API keys.
func WithKeys(key, fallback string) Option {
	return func(c *Client) {
		c.apiKey = key
		c.fallbackKey = fallback
	}
}

// NewClient builds a Client from the engine configuration.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     engine.Cfg.DataAPIBase,
		apiKey:      engine.Cfg.YouTubeAPIKey,
		fallbackKey: engine.Cfg.YouTubeAPIKeyFallback,
		http:        engine.Cfg.HTTPClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an API GET, trying the fallback key if the primary fails
// (quota exhaustion surfaces as 403).
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	keys := []string{c.apiKey}
	if c.fallbackKey != "" {
		keys = append(keys, c.fallbackKey)
	}
	var lastErr error
	for _, key := range keys {
		if err := c.doGet(ctx, endpoint, params, key, out); err != nil {
			lastErr = err
			slog.Debug("youtube data API key failed, trying fallback", slog.Any("err", err))
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values, apiKey string, out any) error {
	engine.IncrDataAPIRequests()

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", apiKey)
	apiURL := c.baseURL + endpoint + "?" + q.Encode()

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return c.http.Do(req)
	})
	if err != nil {
		return fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("youtube data API %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube data API: %w", err)
	}
	return nil
}

// UploadsPlaylist resolves the uploads playlist id of a channel.
func (c *Client) UploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	var resp channelsResp
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return "", fmt.Errorf("youtube: channel %s has no uploads playlist", channelID)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// IsChannelDeleted reports whether a channel id no longer resolves.
func (c *Client) IsChannelDeleted(ctx context.Context, channelID string) (bool, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", channelID)

	var resp channelsResp
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return false, err
	}
	return resp.PageInfo.TotalResults == 0, nil
}

// playlistPage fetches one 50-item page of a playlist.
func (c *Client) playlistPage(ctx context.Context, playlistID, pageToken string) (*playlistItemsResp, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", "50")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp playlistItemsResp
	if err := c.get(ctx, "/playlistItems", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VideosInTimeframe lists a channel's uploads published in [start, end).
// Uploads come back newest-first, so the walk stops at the first item older
// than start; the failsafe cap guards against pathological channels.
func (c *Client) VideosInTimeframe(ctx context.Context, channelID string, start, end time.Time) ([]Video, error) {
	playlistID, err := c.UploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var videos []Video
	token := ""
	seen := 0
	for {
		page, err := c.playlistPage(ctx, playlistID, token)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			seen++
			pub := item.Snippet.PublishedAt
			if pub.Before(start) {
				return videos, nil
			}
			if pub.Before(end) {
				videos = append(videos, toVideo(item))
			}
		}
		if page.NextPageToken == "" {
			return videos, nil
		}
		if seen >= listingFailsafe {
			slog.Warn("youtube: listing failsafe hit", slog.String("channel", channelID), slog.Int("seen", seen))
			return videos, nil
		}
		token = page.NextPageToken
	}
}

// LatestVideos lists a channel's most recent uploads, up to max.
func (c *Client) LatestVideos(ctx context.Context, channelID string, max int) ([]Video, error) {
	if max <= 0 {
		max = 50
	}
	playlistID, err := c.UploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var videos []Video
	token := ""
	for len(videos) < max {
		page, err := c.playlistPage(ctx, playlistID, token)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			videos = append(videos, toVideo(item))
			if len(videos) >= max {
				return videos, nil
			}
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	return videos, nil
}

// ChannelSubscribers returns subscriber counts for up to 50 channel ids.
// Channels that hide the count are absent from the result.
func (c *Client) ChannelSubscribers(ctx context.Context, channelIDs []string) (map[string]int64, error) {
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(channelIDs, ","))

	var resp channelsResp
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(resp.Items))
	for _, item := range resp.Items {
		if item.Statistics == nil || item.Statistics.SubscriberCount == "" {
			continue
		}
		n, err := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
		if err != nil {
			continue
		}
		counts[item.ID] = n
	}
	return counts, nil
}

// VideoViews returns view counts for up to 50 video ids. Videos without a
// published count are absent from the result.
func (c *Client) VideoViews(ctx context.Context, videoIDs []string) (map[string]int64, error) {
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(videoIDs, ","))

	var resp videosResp
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}
	views := make(map[string]int64, len(resp.Items))
	for _, item := range resp.Items {
		if item.Statistics.ViewCount == "" {
			continue
		}
		n, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		if err != nil {
			continue
		}
		views[item.ID] = n
	}
	return views, nil
}

func toVideo(item playlistItem) Video {
	return Video{
		ID:          item.Snippet.ResourceID.VideoID,
		Title:       item.Snippet.Title,
		ChannelID:   item.Snippet.ChannelID,
		PublishedAt: item.Snippet.PublishedAt,
	}
}
