package runner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pixelgate/pixelgate/internal/config"
	"github.com/pixelgate/pixelgate/internal/source"
)

func TestExpandCrossesBrowsers(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Browsers: []string{"chromium", "firefox"}}
	cases := []source.CaseMeta{
		{ID: "button", Variant: "primary", URL: "http://localhost/button"},
		{ID: "button", Variant: "disabled", URL: "http://localhost/button-disabled"},
		{ID: "header", URL: "http://localhost/header"},
	}

	instances, err := Expand(cases, cfg)
	require.NoError(t, err)
	require.Len(t, instances, 6)

	// Browser is folded into the variant so artifact names stay unique.
	names := make(map[string]bool, len(instances))
	for _, inst := range instances {
		require.False(t, names[inst.ArtifactName()], "duplicate artifact name %s", inst.ArtifactName())
		names[inst.ArtifactName()] = true
	}

	require.Equal(t, "button-disabled-chromium", instances[0].ID())
	require.Equal(t, "header-default-firefox.png", instances[5].ArtifactName())
}

func TestExpandSingleBrowserKeepsPlainVariant(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Browsers: []string{"chromium"}}
	cases := []source.CaseMeta{{ID: "home", URL: "http://localhost/"}}

	instances, err := Expand(cases, cfg)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	require.Equal(t, "home-default", instances[0].ID())
	require.Equal(t, "home-default.png", instances[0].ArtifactName())
}

func TestExpandBrowserRestriction(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Browsers: []string{"chromium", "firefox"}}
	cases := []source.CaseMeta{
		{ID: "everywhere", URL: "http://localhost/a"},
		{ID: "chromium-only", URL: "http://localhost/b", Browsers: []string{"chromium"}},
	}

	instances, err := Expand(cases, cfg)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	for _, inst := range instances {
		if inst.CaseID == "chromium-only" {
			require.Equal(t, "chromium", inst.Browser)
		}
	}
}

func TestExpandOverrides(t *testing.T) {
	t.Parallel()

	threshold := 5.0
	cfg := &config.Config{
		Browsers:  []string{"chromium"},
		Threshold: 1.0,
		Viewports: map[string]config.Viewport{
			"mobile": {Width: 375, Height: 667},
		},
	}
	cases := []source.CaseMeta{
		{ID: "plain", URL: "http://localhost/a"},
		{ID: "tuned", URL: "http://localhost/b", Viewport: "mobile", Threshold: &threshold},
	}

	instances, err := Expand(cases, cfg)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	require.Equal(t, 1.0, instances[0].Threshold)
	require.Equal(t, config.DefaultViewportWidth, instances[0].Viewport.Width)

	require.Equal(t, 5.0, instances[1].Threshold)
	require.Equal(t, 375, instances[1].Viewport.Width)
	require.Equal(t, 667, instances[1].Viewport.Height)
}

func TestExpandUnknownViewport(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Browsers: []string{"chromium"}}
	cases := []source.CaseMeta{{ID: "bad", URL: "http://localhost/", Viewport: "nope"}}

	_, err := Expand(cases, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope")
}

func TestExpandSortIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Browsers: []string{"firefox", "chromium"}}
	cases := []source.CaseMeta{
		{ID: "zeta", URL: "http://localhost/z"},
		{ID: "alpha", URL: "http://localhost/a"},
	}

	instances, err := Expand(cases, cfg)
	require.NoError(t, err)
	require.Len(t, instances, 4)

	require.Equal(t, "alpha", instances[0].CaseID)
	require.Equal(t, "chromium", instances[0].Browser)
	require.Equal(t, "alpha", instances[1].CaseID)
	require.Equal(t, "firefox", instances[1].Browser)
	require.Equal(t, "zeta", instances[2].CaseID)
}
