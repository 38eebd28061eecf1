package mdnotes

import (
	"log/slog"
	"time"

	"github.com/alnah/go-mdnotes/internal/assets"
)

// Defaults for rendering.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultSettleDelay    = time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 1024
)

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout        time.Duration
	settleDelay    time.Duration
	browserBin     string
	viewportWidth  int
	viewportHeight int
	style          string
	assetPath      string
	diagrams       bool
	diagramScript  string
}

func defaultConfig() exporterConfig {
	return exporterConfig{
		timeout:        DefaultTimeout,
		settleDelay:    DefaultSettleDelay,
		viewportWidth:  DefaultViewportWidth,
		viewportHeight: DefaultViewportHeight,
		style:          assets.DefaultStyleName,
		diagrams:       true,
	}
}

// WithTimeout bounds one PDF render, from page creation to the last byte.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdnotes: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithSettleDelay sets the fixed wait between page load and printing that
// lets client-side diagram rendering finish. Zero disables the wait.
// Panics if d < 0.
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("mdnotes: WithSettleDelay duration must not be negative")
	}
	return func(e *Exporter) {
		e.cfg.settleDelay = d
	}
}

// WithBrowserBin sets the browser executable, as a path or a name on PATH.
// Empty means ROD_BROWSER_BIN, then the usual install locations.
func WithBrowserBin(bin string) Option {
	return func(e *Exporter) {
		e.cfg.browserBin = bin
	}
}

// WithViewport sets the browser window size in pixels.
// Panics if either dimension is not positive.
func WithViewport(width, height int) Option {
	if width <= 0 || height <= 0 {
		panic("mdnotes: WithViewport dimensions must be positive")
	}
	return func(e *Exporter) {
		e.cfg.viewportWidth = width
		e.cfg.viewportHeight = height
	}
}

// WithStyle selects the stylesheet by asset name.
func WithStyle(name string) Option {
	return func(e *Exporter) {
		e.cfg.style = name
	}
}

// WithAssetPath sets a directory whose styles/, templates/ and scripts/
// override the embedded assets.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithDiagrams toggles client-side mermaid rendering.
func WithDiagrams(enabled bool) Option {
	return func(e *Exporter) {
		e.cfg.diagrams = enabled
	}
}

// WithDiagramScriptURL sets the mermaid script loaded by composed pages.
func WithDiagramScriptURL(url string) Option {
	return func(e *Exporter) {
		e.cfg.diagramScript = url
	}
}

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// withRenderer replaces the PDF renderer (tests).
func withRenderer(r pdfRenderer) Option {
	return func(e *Exporter) {
		e.renderer = r
	}
}
