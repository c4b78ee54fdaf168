package scraper

import "fmt"

// TransportError reports a failed watch-page fetch: a non-200 HTTP status
// or a network-level failure (timeout, DNS, connection reset).
type TransportError struct {
	StatusCode int // 0 when the failure happened below HTTP
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch watch page: %v", e.Err)
	}
	return fmt.Sprintf("fetch watch page: HTTP %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExtractionError reports that the ytInitialData blob was not found in any
// script block, or that the isolated text was not valid JSON.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract initial data: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extract initial data: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ParseError reports that the mandatory watch-next navigation path could not
// be resolved. This is the fail-fast signal that the upstream page schema
// changed, as opposed to an item merely missing an optional field.
type ParseError struct {
	Missing string // the key that was absent on the mandatory path
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse recommendations: structure changed (missing %q): %v", e.Missing, e.Err)
	}
	return fmt.Sprintf("parse recommendations: structure changed (missing %q)", e.Missing)
}

func (e *ParseError) Unwrap() error { return e.Err }
