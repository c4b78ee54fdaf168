package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves a minimal Data API: one channel with an uploads playlist
// and a newest-first listing split across pages of two.
type fakeAPI struct {
	videos   []fakeVideo // newest first
	pageSize int
	validKey string
	requests int
}

type fakeVideo struct {
	id        string
	published time.Time
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		if f.validKey != "" && r.URL.Query().Get("key") != f.validKey {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":403,"message":"quotaExceeded"}}`)
			return
		}
		switch r.URL.Path {
		case "/channels":
			fmt.Fprint(w, `{"pageInfo":{"totalResults":1},"items":[{"id":"UCnews","contentDetails":{"relatedPlaylists":{"uploads":"UUnews"}}}]}`)
		case "/playlistItems":
			f.servePlaylist(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (f *fakeAPI) servePlaylist(w http.ResponseWriter, r *http.Request) {
	start := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		fmt.Sscanf(tok, "page-%d", &start)
	}
	end := start + f.pageSize
	if end > len(f.videos) {
		end = len(f.videos)
	}

	resp := map[string]any{}
	var items []map[string]any
	for _, v := range f.videos[start:end] {
		items = append(items, map[string]any{
			"snippet": map[string]any{
				"title":       "video " + v.id,
				"publishedAt": v.published.Format(time.RFC3339),
				"channelId":   "UCnews",
				"resourceId":  map[string]any{"videoId": v.id},
			},
		})
	}
	resp["items"] = items
	if end < len(f.videos) {
		resp["nextPageToken"] = fmt.Sprintf("page-%d", end)
	}
	json.NewEncoder(w).Encode(resp)
}

func newTestClient(srv *httptest.Server, key, fallback string) *Client {
	return NewClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithKeys(key, fallback),
	)
}

func TestUploadsPlaylist(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	got, err := newTestClient(srv, "k", "").UploadsPlaylist(context.Background(), "UCnews")
	require.NoError(t, err)
	assert.Equal(t, "UUnews", got)
}

func TestVideosInTimeframe(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		pageSize: 2,
		videos: []fakeVideo{
			{"v1", now.AddDate(0, 0, -1)},
			{"v2", now.AddDate(0, 0, -3)},
			{"v3", now.AddDate(0, 0, -5)},
			{"v4", now.AddDate(0, 0, -9)},
			{"v5", now.AddDate(0, 0, -30)},
		},
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c := newTestClient(srv, "k", "")
	videos, err := c.VideosInTimeframe(context.Background(), "UCnews", now.AddDate(0, 0, -10), now)
	require.NoError(t, err)

	var ids []string
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	// v5 predates the window and stops the walk; everything newer is inside it.
	assert.Equal(t, []string{"v1", "v2", "v3", "v4"}, ids)
	assert.Equal(t, "UCnews", videos[0].ChannelID)
	assert.Equal(t, "video v1", videos[0].Title)
}

func TestVideosInTimeframeEndExclusive(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		pageSize: 10,
		videos: []fakeVideo{
			{"too-new", now.AddDate(0, 0, 1)},
			{"inside", now.AddDate(0, 0, -1)},
		},
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	videos, err := newTestClient(srv, "k", "").VideosInTimeframe(context.Background(), "UCnews", now.AddDate(0, 0, -2), now)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "inside", videos[0].ID)
}

func TestLatestVideos(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeAPI{
		pageSize: 2,
		videos: []fakeVideo{
			{"v1", now}, {"v2", now}, {"v3", now}, {"v4", now},
		},
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	videos, err := newTestClient(srv, "k", "").LatestVideos(context.Background(), "UCnews", 3)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "v3", videos[2].ID)
}

func TestFallbackKeyOnQuotaError(t *testing.T) {
	api := &fakeAPI{validKey: "good"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	got, err := newTestClient(srv, "exhausted", "good").UploadsPlaylist(context.Background(), "UCnews")
	require.NoError(t, err)
	assert.Equal(t, "UUnews", got)
}

func TestNoFallbackKeyPropagatesError(t *testing.T) {
	api := &fakeAPI{validKey: "good"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	_, err := newTestClient(srv, "exhausted", "").UploadsPlaylist(context.Background(), "UCnews")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
