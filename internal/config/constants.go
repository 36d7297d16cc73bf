package config

import "time"

const (
	// DefaultConfigFile is the suite configuration file looked up when
	// --config is not passed.
	DefaultConfigFile = "pixelgate.yaml"

	// DefaultArtifactsDir is the root directory for base/current/diff
	// screenshot artifacts.
	DefaultArtifactsDir = ".pixelgate"

	// DefaultConcurrency bounds parallel captures when the suite file does
	// not set one.
	DefaultConcurrency = 4

	// DefaultCaptureTimeout bounds a single capture operation.
	DefaultCaptureTimeout = 30 * time.Second

	// DefaultEngine is the comparison engine used when none is configured.
	DefaultEngine = "pixelmatch"

	// DefaultBrowser is used when the suite file lists no browsers.
	DefaultBrowser = "chromium"

	// DefaultDiffColor highlights changed pixels in diff artifacts.
	DefaultDiffColor = "#ff00ff"

	// DefaultViewportWidth and DefaultViewportHeight apply when neither the
	// suite file nor the case declares a viewport.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
