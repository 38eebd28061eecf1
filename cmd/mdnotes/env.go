package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	mdnotes "github.com/alnah/go-mdnotes"
	"github.com/alnah/go-mdnotes/internal/app"
	"github.com/alnah/go-mdnotes/internal/config"
)

// ExporterFactory builds the export pipeline from the loaded configuration.
type ExporterFactory func(cfg *config.Config, logger *slog.Logger) (app.Exporter, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time and the exporter constructor.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Stdin       io.Reader
	NewExporter ExporterFactory
	LookBrowser func(bin string) (string, error)
}

// DefaultEnv returns the production environment backed by a headless browser.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
		NewExporter: newExporter,
		LookBrowser: mdnotes.LookupBrowser,
	}
}

// newExporter maps the export and pdf config sections onto exporter options.
func newExporter(cfg *config.Config, logger *slog.Logger) (app.Exporter, error) {
	opts := []mdnotes.Option{
		mdnotes.WithTimeout(cfg.PDF.Timeout.Std()),
		mdnotes.WithSettleDelay(cfg.PDF.SettleDelay.Std()),
		mdnotes.WithViewport(cfg.PDF.ViewportWidth, cfg.PDF.ViewportHeight),
		mdnotes.WithDiagrams(cfg.Export.Diagrams),
		mdnotes.WithBrowserBin(cfg.PDF.BrowserBin),
		mdnotes.WithAssetPath(cfg.Export.AssetPath),
		mdnotes.WithLogger(logger),
	}
	if cfg.Export.Style != "" {
		opts = append(opts, mdnotes.WithStyle(cfg.Export.Style))
	}
	if cfg.Export.DiagramScript != "" {
		opts = append(opts, mdnotes.WithDiagramScriptURL(cfg.Export.DiagramScript))
	}
	return mdnotes.NewExporter(opts...)
}
