package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/config"
)

const storybookHTTPTimeout = 30 * time.Second

var errStorybookURL = errors.New("storybook source requires a url")

func init() {
	Register("storybook", func(log logrus.FieldLogger, cfg config.Source) (Source, error) {
		if cfg.URL == "" {
			return nil, errStorybookURL
		}
		return newStorybook(log, cfg.URL), nil
	})
}

// storybook discovers stories from a running Storybook's index endpoint.
type storybook struct {
	url        string
	httpClient *http.Client
	log        logrus.FieldLogger
}

func newStorybook(log logrus.FieldLogger, rawURL string) *storybook {
	return &storybook{
		url:        strings.TrimRight(rawURL, "/"),
		httpClient: &http.Client{Timeout: storybookHTTPTimeout},
		log:        log.WithField("component", "storybook_source"),
	}
}

func (s *storybook) Name() string {
	return "storybook"
}

// Start probes the index endpoint. A dev server that is still compiling
// answers with an error here, which the discovery retry loop absorbs.
func (s *storybook) Start(ctx context.Context) (string, error) {
	if _, err := s.fetchIndex(ctx); err != nil {
		return "", fmt.Errorf("storybook not ready at %s: %w", s.url, err)
	}

	return s.url, nil
}

// ListCases maps every story entry to a case. Each story becomes
// (caseID=title, variant=name) rendered through the iframe endpoint.
func (s *storybook) ListCases(ctx context.Context) ([]CaseMeta, error) {
	entries, err := s.fetchIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing storybook cases: %w", err)
	}

	cases := make([]CaseMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.Type != "" && entry.Type != "story" {
			// docs-only entries are not renderable test cases
			continue
		}

		cases = append(cases, CaseMeta{
			ID:      Slug(entry.Title),
			Variant: Slug(entry.Name),
			URL:     "/iframe.html?id=" + url.QueryEscape(entry.ID) + "&viewMode=story",
		})
	}

	s.log.WithField("cases", len(cases)).Debug("listed storybook cases")

	return cases, nil
}

func (s *storybook) Stop() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

type storyEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Kind  string `json:"kind"`  // stories.json v3
	Story string `json:"story"` // stories.json v3
}

type storyIndex struct {
	V       int                   `json:"v"`
	Entries map[string]storyEntry `json:"entries"` // index.json (v4+)
	Stories map[string]storyEntry `json:"stories"` // stories.json (v3)
}

// fetchIndex reads index.json, falling back to the older stories.json.
func (s *storybook) fetchIndex(ctx context.Context) (map[string]storyEntry, error) {
	index, err := s.fetchJSON(ctx, s.url+"/index.json")
	if err != nil {
		index, err = s.fetchJSON(ctx, s.url+"/stories.json")
		if err != nil {
			return nil, err
		}
	}

	if len(index.Entries) > 0 {
		return index.Entries, nil
	}

	// stories.json uses kind/story instead of title/name
	entries := make(map[string]storyEntry, len(index.Stories))
	for id, entry := range index.Stories {
		if entry.Title == "" {
			entry.Title = entry.Kind
		}
		if entry.Name == "" {
			entry.Name = entry.Story
		}
		entries[id] = entry
	}

	return entries, nil
}

func (s *storybook) fetchJSON(ctx context.Context, endpoint string) (*storyIndex, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", endpoint, err)
	}

	index := &storyIndex{}
	if err := json.Unmarshal(body, index); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", endpoint, err)
	}

	return index, nil
}
