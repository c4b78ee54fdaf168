package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/anatolykoptev/go_bias/internal/engine"
)

// maxPageBytes caps how much of a watch page is read. Watch pages run
// 1-2 MB; anything beyond this is not the page we want.
const maxPageBytes = 8 * 1024 * 1024

// FetchWatchPage issues a single GET for the watch page of videoID and
// returns the response body. Non-200 statuses and network failures come
// back as *TransportError. No retry happens here; that is the caller's
// policy.
func (m *Miner) FetchWatchPage(ctx context.Context, videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("scraper: empty video id")
	}
	engine.IncrWatchPageRequests()

	pageURL := m.baseURL + videoID

	if m.browser != nil {
		body, _, status, err := m.browser.Do(http.MethodGet, pageURL, engine.ChromeHeaders(), nil)
		if err != nil {
			engine.IncrWatchPageErrors()
			return "", &TransportError{Err: err}
		}
		if status != http.StatusOK {
			engine.IncrWatchPageErrors()
			return "", &TransportError{StatusCode: status}
		}
		return string(body), nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := m.client.Do(req)
	if err != nil {
		engine.IncrWatchPageErrors()
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		engine.IncrWatchPageErrors()
		return "", &TransportError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		engine.IncrWatchPageErrors()
		return "", &TransportError{Err: err}
	}
	return string(body), nil
}
