package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// initialDataMarker is the assignment that seeds the page's client-side
// state. The first script block containing it holds the blob we want.
const initialDataMarker = "var ytInitialData ="

// ExtractInitialData locates the embedded ytInitialData assignment inside
// the page's inline script blocks and returns the raw JSON value. Fails
// with *ExtractionError when no script block carries the marker or when
// the isolated text is not valid JSON.
func ExtractInitialData(markup string) (json.RawMessage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &ExtractionError{Reason: "unparseable markup", Err: err}
	}

	var found, ok bool
	var isolated string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, initialDataMarker) {
			return true
		}
		found = true
		isolated, ok = isolateAssignment(text)
		return false
	})

	if !found {
		return nil, &ExtractionError{Reason: "initial data not found in any script block"}
	}
	if !ok || !json.Valid([]byte(isolated)) {
		return nil, &ExtractionError{Reason: "malformed initial data"}
	}
	return json.RawMessage(isolated), nil
}

// isolateAssignment slices the assigned value out of a script block:
// everything after the marker up to the last ';' in the block. This is a
// lexical heuristic, not a script parser. It assumes the assignment is the
// final statement in its block and that no unescaped ';' follows the value;
// a later ';' in the same block would mis-isolate the blob. Kept in one
// place so it can be swapped for bracket-depth scanning if that ever bites.
func isolateAssignment(script string) (string, bool) {
	start := strings.Index(script, initialDataMarker)
	if start < 0 {
		return "", false
	}
	start += len(initialDataMarker)
	end := strings.LastIndex(script, ";")
	if end <= start {
		return "", false
	}
	return strings.TrimSpace(script[start:end]), true
}
