package source

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/browser"
	"github.com/pixelgate/pixelgate/internal/config"
)

var errPagesBaseURL = errors.New("pages source requires a baseUrl")

func init() {
	Register("pages", func(log logrus.FieldLogger, cfg config.Source) (Source, error) {
		if cfg.BaseURL == "" {
			return nil, errPagesBaseURL
		}
		return newPages(log, cfg), nil
	})
}

// pages serves statically configured page cases.
type pages struct {
	baseURL string
	cases   []CaseMeta
	log     logrus.FieldLogger
}

func newPages(log logrus.FieldLogger, cfg config.Source) *pages {
	cases := make([]CaseMeta, 0, len(cfg.Pages))
	for _, page := range cfg.Pages {
		interactions := make([]browser.Interaction, 0, len(page.Interactions))
		for _, i := range page.Interactions {
			interactions = append(interactions, browser.Interaction{
				Type:     i.Type,
				Selector: i.Selector,
				Value:    i.Value,
			})
		}

		cases = append(cases, CaseMeta{
			ID:               Slug(page.ID),
			Variant:          Slug(page.Variant),
			URL:              page.Path,
			ScreenshotTarget: page.Target,
			Viewport:         page.Viewport,
			Threshold:        page.Threshold,
			Interactions:     interactions,
			Browsers:         page.Browsers,
		})
	}

	return &pages{
		baseURL: cfg.BaseURL,
		cases:   cases,
		log:     log.WithField("component", "pages_source"),
	}
}

func (p *pages) Name() string {
	return "pages"
}

func (p *pages) Start(_ context.Context) (string, error) {
	return p.baseURL, nil
}

func (p *pages) ListCases(_ context.Context) ([]CaseMeta, error) {
	p.log.WithField("cases", len(p.cases)).Debug("listed configured pages")
	return p.cases, nil
}

func (p *pages) Stop() error {
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slug normalizes an identifier for use in artifact filenames.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
