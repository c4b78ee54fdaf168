package scraper

import "encoding/json"

// Recommendation is one entry of a video's "watch next" panel. Fields may
// be empty when the platform did not populate them; records are never
// mutated after the parser creates them.
type Recommendation struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	ChannelID   string `json:"channel_id"`
}

// --- ytInitialData shapes ---
//
// The mandatory navigation path is modeled with pointers so that a missing
// key is distinguishable from an empty value. Everything below the item
// level is optional and defaults to the empty string.

type initialData struct {
	Contents *struct {
		TwoColumnWatchNextResults *struct {
			SecondaryResults *struct {
				SecondaryResults *struct {
					Results *[]watchNextItem `json:"results"`
				} `json:"secondaryResults"`
			} `json:"secondaryResults"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
}

type watchNextItem struct {
	CompactVideoRenderer *compactVideo `json:"compactVideoRenderer"`
}

type compactVideo struct {
	VideoID string `json:"videoId"`
	Title   *struct {
		SimpleText string `json:"simpleText"`
	} `json:"title"`
	LongBylineText *struct {
		Runs []bylineRun `json:"runs"`
	} `json:"longBylineText"`
}

type bylineRun struct {
	Text               string `json:"text"`
	NavigationEndpoint *struct {
		BrowseEndpoint *struct {
			BrowseID string `json:"browseId"`
		} `json:"browseEndpoint"`
	} `json:"navigationEndpoint"`
}

// ParseRecommendations walks the watch-next panel of a parsed ytInitialData
// blob and returns its recommendations in presentation order.
//
// Tolerance is two-tier on purpose: the fixed navigation path down to the
// results list is strict (any missing key → *ParseError, the signal that
// the upstream schema changed), while fields of an individual item are
// lenient (absent → empty string). Items that are not compactVideoRenderer
// entries — ads, shelves, continuations — are skipped, preserving the
// relative order of the rest.
func ParseRecommendations(data json.RawMessage) ([]Recommendation, error) {
	var root initialData
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Missing: "contents", Err: err}
	}

	items, missing := resolveWatchNext(root)
	if missing != "" {
		return nil, &ParseError{Missing: missing}
	}

	recs := make([]Recommendation, 0, len(items))
	for _, item := range items {
		cv := item.CompactVideoRenderer
		if cv == nil {
			continue
		}
		rec := Recommendation{VideoID: cv.VideoID}
		if cv.Title != nil {
			rec.Title = cv.Title.SimpleText
		}
		if cv.LongBylineText != nil && len(cv.LongBylineText.Runs) > 0 {
			run := cv.LongBylineText.Runs[0]
			rec.ChannelName = run.Text
			if run.NavigationEndpoint != nil && run.NavigationEndpoint.BrowseEndpoint != nil {
				rec.ChannelID = run.NavigationEndpoint.BrowseEndpoint.BrowseID
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// resolveWatchNext follows the mandatory path and returns the results list,
// or the name of the first missing key.
func resolveWatchNext(root initialData) ([]watchNextItem, string) {
	switch {
	case root.Contents == nil:
		return nil, "contents"
	case root.Contents.TwoColumnWatchNextResults == nil:
		return nil, "twoColumnWatchNextResults"
	case root.Contents.TwoColumnWatchNextResults.SecondaryResults == nil:
		return nil, "secondaryResults"
	case root.Contents.TwoColumnWatchNextResults.SecondaryResults.SecondaryResults == nil:
		return nil, "secondaryResults.secondaryResults"
	case root.Contents.TwoColumnWatchNextResults.SecondaryResults.SecondaryResults.Results == nil:
		return nil, "results"
	}
	return *root.Contents.TwoColumnWatchNextResults.SecondaryResults.SecondaryResults.Results, ""
}
