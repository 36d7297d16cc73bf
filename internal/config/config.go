// Package config handles suite configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	errNoSources       = errors.New("at least one source must be configured")
	errSourceType      = errors.New("source missing type")
	errUnknownViewport = errors.New("unknown viewport name")
	errBadDiffColor    = errors.New("diff color must be a #rrggbb hex value")
)

// Viewport is a named browser window size.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Interaction is a page interaction executed before capturing.
type Interaction struct {
	Type     string `yaml:"type"`     // click, hover, type, wait, sleep
	Selector string `yaml:"selector"` // CSS selector, where applicable
	Value    string `yaml:"value"`    // text for type, duration for sleep
}

// Page declares one static test case for the pages source.
type Page struct {
	ID           string        `yaml:"id"`
	Variant      string        `yaml:"variant"`
	Path         string        `yaml:"path"`
	Target       string        `yaml:"target"` // CSS selector; empty captures the full page
	Viewport     string        `yaml:"viewport"`
	Threshold    *float64      `yaml:"threshold"`
	Browsers     []string      `yaml:"browsers"` // restriction; empty allows all configured browsers
	Interactions []Interaction `yaml:"interactions"`
}

// Source declares one test case source.
type Source struct {
	Type    string `yaml:"type"` // storybook, pages
	URL     string `yaml:"url"`
	BaseURL string `yaml:"baseUrl"`
	Pages   []Page `yaml:"pages"`
}

// Config holds the suite configuration.
type Config struct {
	Sources         []Source            `yaml:"sources"`
	Browsers        []string            `yaml:"browsers"`
	Viewports       map[string]Viewport `yaml:"viewports"`
	DefaultViewport string              `yaml:"defaultViewport"`
	Concurrency     int                 `yaml:"concurrency"`
	Threshold       float64             `yaml:"threshold"` // max allowed diff percentage
	DiffColor       string              `yaml:"diffColor"`
	Engine          string              `yaml:"engine"`
	ArtifactsDir    string              `yaml:"artifactsDir"`
	CaptureTimeout  time.Duration       `yaml:"captureTimeout"`
	Headless        *bool               `yaml:"headless"`
	BrowserPath     string              `yaml:"browserPath"`
}

// Load reads the suite file, applies defaults and environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnv("PIXELGATE_CONFIG", DefaultConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills unset fields with built-in defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Browsers) == 0 {
		c.Browsers = []string{DefaultBrowser}
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.CaptureTimeout == 0 {
		c.CaptureTimeout = DefaultCaptureTimeout
	}
	if c.ArtifactsDir == "" {
		c.ArtifactsDir = DefaultArtifactsDir
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.DiffColor == "" {
		c.DiffColor = DefaultDiffColor
	}
	if c.Viewports == nil {
		c.Viewports = make(map[string]Viewport)
	}
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PIXELGATE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PIXELGATE_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}

	if v := os.Getenv("PIXELGATE_ARTIFACTS_DIR"); v != "" {
		c.ArtifactsDir = v
	}

	if v := os.Getenv("PIXELGATE_CAPTURE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PIXELGATE_CAPTURE_TIMEOUT: %w", err)
		}
		c.CaptureTimeout = d
	}

	if v := os.Getenv("PIXELGATE_BROWSERS"); v != "" {
		browsers := strings.Split(v, ",")
		for i := range browsers {
			browsers[i] = strings.TrimSpace(browsers[i])
		}
		c.Browsers = browsers
	}

	return nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errNoSources
	}

	for i, src := range c.Sources {
		if src.Type == "" {
			return fmt.Errorf("source %d: %w", i, errSourceType)
		}

		for _, page := range src.Pages {
			if page.Viewport != "" {
				if _, ok := c.Viewports[page.Viewport]; !ok {
					return fmt.Errorf("page %s: %w: %s", page.ID, errUnknownViewport, page.Viewport)
				}
			}
		}
	}

	if c.DefaultViewport != "" {
		if _, ok := c.Viewports[c.DefaultViewport]; !ok {
			return fmt.Errorf("%w: %s", errUnknownViewport, c.DefaultViewport)
		}
	}

	if _, err := c.ParseDiffColor(); err != nil {
		return err
	}

	return nil
}

// ResolveViewport returns the viewport for a case-level name, falling back
// to the suite default and then the built-in default.
func (c *Config) ResolveViewport(name string) (Viewport, error) {
	if name == "" {
		name = c.DefaultViewport
	}

	if name == "" {
		return Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}, nil
	}

	vp, ok := c.Viewports[name]
	if !ok {
		return Viewport{}, fmt.Errorf("%w: %s", errUnknownViewport, name)
	}

	return vp, nil
}

// ParseDiffColor parses the configured #rrggbb diff color.
func (c *Config) ParseDiffColor() (color.RGBA, error) {
	s := strings.TrimPrefix(c.DiffColor, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %s", errBadDiffColor, c.DiffColor)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %s", errBadDiffColor, c.DiffColor)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// HeadlessMode reports whether browsers should run headless (the default).
func (c *Config) HeadlessMode() bool {
	if c.Headless == nil {
		return true
	}
	return *c.Headless
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) String() string {
	return fmt.Sprintf(`Current Configuration:
======================
Sources:          %d
Browsers:         %s
Concurrency:      %d
Threshold:        %.2f%%
Diff Color:       %s
Engine:           %s
Artifacts Dir:    %s
Capture Timeout:  %s
Headless:         %t`,
		len(c.Sources),
		strings.Join(c.Browsers, ", "),
		c.Concurrency,
		c.Threshold,
		c.DiffColor,
		c.Engine,
		c.ArtifactsDir,
		c.CaptureTimeout,
		c.HeadlessMode(),
	)
}
