package runner

import (
	"fmt"
	"sort"

	"github.com/pixelgate/pixelgate/internal/browser"
	"github.com/pixelgate/pixelgate/internal/config"
	"github.com/pixelgate/pixelgate/internal/source"
)

// Instance is one concrete (case, variant, browser) unit scheduled for
// capture. Instances are created during expansion, are immutable, and are
// consumed exactly once by the orchestrator.
type Instance struct {
	CaseID           string
	VariantID        string
	URL              string
	ScreenshotTarget string
	Viewport         browser.Viewport
	Threshold        float64
	Interactions     []browser.Interaction
	Browser          string
}

// ID is the deterministic identifier shared by capture and comparison
// results.
func (i *Instance) ID() string {
	return i.CaseID + "-" + i.VariantID
}

// ArtifactName is the caseId-variantId derived artifact filename. The
// browser tag is folded into the variant during expansion, so the name is
// unique per instance.
func (i *Instance) ArtifactName() string {
	return i.ID() + ".png"
}

// Expand crosses discovered cases with the configured browser list. Cases
// declaring a browser restriction are skipped for excluded browsers.
// Case-level overrides take precedence over global configuration. The
// result is sorted by (CaseID, VariantID, Browser) so run order is
// reproducible regardless of source or network timing.
func Expand(cases []source.CaseMeta, cfg *config.Config) ([]*Instance, error) {
	multiBrowser := len(cfg.Browsers) > 1

	instances := make([]*Instance, 0, len(cases)*len(cfg.Browsers))
	for _, c := range cases {
		variant := c.Variant
		if variant == "" {
			variant = "default"
		}

		viewport, err := cfg.ResolveViewport(c.Viewport)
		if err != nil {
			return nil, fmt.Errorf("expanding case %s: %w", c.ID, err)
		}

		threshold := cfg.Threshold
		if c.Threshold != nil {
			threshold = *c.Threshold
		}

		for _, browserName := range cfg.Browsers {
			if restricted(c.Browsers, browserName) {
				continue
			}

			variantID := variant
			if multiBrowser {
				// Keep artifact names unique across browsers.
				variantID = variant + "-" + browserName
			}

			instances = append(instances, &Instance{
				CaseID:           c.ID,
				VariantID:        variantID,
				URL:              c.URL,
				ScreenshotTarget: c.ScreenshotTarget,
				Viewport:         browser.Viewport{Width: viewport.Width, Height: viewport.Height},
				Threshold:        threshold,
				Interactions:     c.Interactions,
				Browser:          browserName,
			})
		}
	}

	sort.Slice(instances, func(a, b int) bool {
		if instances[a].CaseID != instances[b].CaseID {
			return instances[a].CaseID < instances[b].CaseID
		}
		if instances[a].VariantID != instances[b].VariantID {
			return instances[a].VariantID < instances[b].VariantID
		}
		return instances[a].Browser < instances[b].Browser
	})

	return instances, nil
}

func restricted(allowed []string, browserName string) bool {
	if len(allowed) == 0 {
		return false
	}

	for _, name := range allowed {
		if name == browserName {
			return false
		}
	}

	return true
}
