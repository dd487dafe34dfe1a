// Package csse fetches and parses the JHU CSSE COVID-19 time-series CSVs and
// the local country-code reference.
package csse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source opens a locator for reading. http and https URLs are fetched with a
// single GET; file URLs and bare paths are read from disk.
type Source struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSource creates a Source whose HTTP fetches time out after timeout.
func NewSource(timeout time.Duration, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Open returns a reader over the locator's contents. The caller must close it.
func (s *Source) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	u, err := url.Parse(locator)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return s.fetch(ctx, locator)
		case "file":
			return openFile(u.Path)
		}
	}
	return openFile(locator)
}

func (s *Source) fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Debug("fetching source", "url", locator)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return f, nil
}
