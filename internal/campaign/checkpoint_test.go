package campaign

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_bias/internal/scraper"
)

func TestCheckpointRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	original := ChannelBias{
		"vid1": {
			{VideoID: "a", Title: "First", ChannelName: "Chan A", ChannelID: "UCa"},
			{VideoID: "b", Title: "", ChannelName: "", ChannelID: ""},
			{VideoID: "", Title: "orphan", ChannelName: "Chan B", ChannelID: "UCb"},
		},
		"vid2": {},
		"vid3": {
			{VideoID: "c", Title: "Third", ChannelName: "Chan C", ChannelID: "UCc"},
		},
	}

	require.NoError(t, store.Save("UCnews", original))
	loaded, err := store.Load("UCnews")
	require.NoError(t, err)

	assert.Equal(t, original, loaded, "same keys, same field values, same per-key order")
}

func TestCheckpointWireFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("UCnews", ChannelBias{
		"vid1": {{VideoID: "a", Title: "T", ChannelName: "C", ChannelID: "UCa"}},
	}))

	blob, err := os.ReadFile(filepath.Join(dir, "UCnews.json"))
	require.NoError(t, err)

	// The on-disk contract: object keyed by source video id, arrays of
	// records with exactly these four string fields.
	var generic map[string][]map[string]string
	require.NoError(t, json.Unmarshal(blob, &generic))
	require.Len(t, generic["vid1"], 1)
	assert.Equal(t, map[string]string{
		"video_id":     "a",
		"title":        "T",
		"channel_name": "C",
		"channel_id":   "UCa",
	}, generic["vid1"][0])
}

func TestCheckpointLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data, err := store.Load("UCnever")
	require.NoError(t, err, "a missing checkpoint is not an error")
	assert.Empty(t, data)
}

func TestCheckpointLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "UCbad.json"), []byte("not json"), 0o644))

	_, err = store.Load("UCbad")
	require.Error(t, err, "corrupt checkpoints fail loudly")
}

func TestListingCache(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	missing, err := store.LoadListing()
	require.NoError(t, err)
	assert.Nil(t, missing)

	listing := map[string][]string{
		"UCnews":  {"v1", "v2", "v3"},
		"UCother": {},
	}
	require.NoError(t, store.SaveListing(listing))

	loaded, err := store.LoadListing()
	require.NoError(t, err)
	assert.Equal(t, listing, loaded)
}

func TestRecommendationJSONTags(t *testing.T) {
	blob, err := json.Marshal(scraper.Recommendation{VideoID: "v", Title: "t", ChannelName: "n", ChannelID: "c"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"video_id":"v","title":"t","channel_name":"n","channel_id":"c"}`, string(blob))
}
