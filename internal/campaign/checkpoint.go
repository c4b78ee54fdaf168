package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_bias/internal/scraper"
)

// ChannelBias maps each source video id of one outlet channel to the
// ordered recommendations scraped for it. It is the unit of checkpointing:
// a non-empty persisted dataset marks the channel as already mined.
type ChannelBias map[string][]scraper.Recommendation

// listingFile caches the per-channel video listings of a run so an
// interrupted run does not re-spend Data API quota.
const listingFile = "channel_videos.json"

// Store persists one JSON checkpoint file per channel under a directory.
type Store struct {
	dir string
}

// NewStore creates the checkpoint directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("checkpoint: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(channelID string) string {
	return filepath.Join(s.dir, channelID+".json")
}

// Save writes the channel's dataset. The on-disk shape is a JSON object
// keyed by source video id, values arrays of recommendation records; it
// round-trips exactly through Load.
func (s *Store) Save(channelID string, data ChannelBias) error {
	blob, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal %s: %w", channelID, err)
	}
	if err := os.WriteFile(s.path(channelID), blob, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", channelID, err)
	}
	return nil
}

// Load reads the channel's dataset. A missing file is not an error; it
// returns an empty dataset, meaning the channel has not been mined.
func (s *Store) Load(channelID string) (ChannelBias, error) {
	blob, err := os.ReadFile(s.path(channelID))
	if errors.Is(err, fs.ErrNotExist) {
		return ChannelBias{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", channelID, err)
	}
	var data ChannelBias
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("checkpoint: parse %s: %w", channelID, err)
	}
	return data, nil
}

// SaveListing caches the channel → video-id listing of the current run.
func (s *Store) SaveListing(listing map[string][]string) error {
	blob, err := json.MarshalIndent(listing, "", "    ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal listing: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, listingFile), blob, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write listing: %w", err)
	}
	return nil
}

// LoadListing returns the cached listing, or nil when none exists.
func (s *Store) LoadListing() (map[string][]string, error) {
	blob, err := os.ReadFile(filepath.Join(s.dir, listingFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read listing: %w", err)
	}
	var listing map[string][]string
	if err := json.Unmarshal(blob, &listing); err != nil {
		return nil, fmt.Errorf("checkpoint: parse listing: %w", err)
	}
	return listing, nil
}
