// Package bias holds the static media-bias lookup table: a JSON file
// mapping outlet channel ids to a bias label and a display name. The file
// is curated by hand and loaded once; the repository never writes to it.
package bias

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Labels used in the media-bias file.
const (
	Left      = "left"
	LeanLeft  = "lean-left"
	Center    = "center"
	LeanRight = "lean-right"
	Right     = "right"
)

// Outlet is one publisher entry of the media-bias file.
type Outlet struct {
	Name string `json:"name"`
	Bias string `json:"bias"`
}

// Repository answers bias lookups for outlet channels.
type Repository struct {
	outlets map[string]Outlet
}

// Load reads the media-bias JSON file at path.
func Load(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bias: read %s: %w", path, err)
	}
	var outlets map[string]Outlet
	if err := json.Unmarshal(data, &outlets); err != nil {
		return nil, fmt.Errorf("bias: parse %s: %w", path, err)
	}
	return &Repository{outlets: outlets}, nil
}

// Bias returns the bias label of a channel, and whether the channel is a
// known outlet at all.
func (r *Repository) Bias(channelID string) (string, bool) {
	o, ok := r.outlets[channelID]
	if !ok {
		return "", false
	}
	return o.Bias, true
}

// Name returns the display name of an outlet, or "" if unknown.
func (r *Repository) Name(channelID string) string {
	return r.outlets[channelID].Name
}

// AllOutlets returns every outlet channel id, sorted for deterministic runs.
func (r *Repository) AllOutlets() []string {
	ids := make([]string, 0, len(r.outlets))
	for id := range r.outlets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OutletsByBias returns the channel ids carrying the given label, sorted.
func (r *Repository) OutletsByBias(label string) []string {
	var ids []string
	for id, o := range r.outlets {
		if o.Bias == label {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
