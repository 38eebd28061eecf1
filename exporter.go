package mdnotes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-mdnotes/internal/assets"
	"github.com/alnah/go-mdnotes/internal/pipeline"
)

// Compile-time interface checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
)

// Exporter turns Markdown into a composed HTML page or a PDF.
// An Exporter holds no browser between calls and is safe for concurrent use.
type Exporter struct {
	cfg           exporterConfig
	logger        *slog.Logger
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	compositor    *pipeline.Compositor
	renderer      pdfRenderer
}

// NewExporter loads assets and builds the pipeline.
// Returns an error if a custom asset path or style cannot be loaded.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg:           defaultConfig(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	bundle, err := assets.LoadBundle(resolver, e.cfg.style)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	compOpts := []pipeline.CompositorOption{pipeline.WithStylesheet(bundle.CSS())}
	if e.cfg.diagrams {
		compOpts = append(compOpts, pipeline.WithDiagramScript(e.cfg.diagramScript, bundle.DiagramScript))
	}
	e.compositor, err = pipeline.NewCompositor(bundle.Template, compOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	// Tests inject a renderer; production renders with go-rod.
	if e.renderer == nil {
		e.renderer = newRodRenderer(renderConfig{
			browserBin:     e.cfg.browserBin,
			timeout:        e.cfg.timeout,
			settleDelay:    e.cfg.settleDelay,
			viewportWidth:  e.cfg.viewportWidth,
			viewportHeight: e.cfg.viewportHeight,
		}, e.logger)
	}

	return e, nil
}

// Export runs the pipeline for format and returns the output bytes.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, markdown string, format ExportFormat) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	switch format {
	case FormatHTML:
		page, err := e.ExportHTML(ctx, markdown)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case FormatPDF:
		return e.ExportPDF(ctx, markdown)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ExportHTML returns the composed, self-contained HTML page for markdown.
func (e *Exporter) ExportHTML(ctx context.Context, markdown string) (string, error) {
	start := time.Now()

	src := pipeline.NormalizeSource(markdown)
	title := pipeline.ResolveTitle(src)

	processed, diagrams := pipeline.ExtractDiagrams(src)
	processed = e.preprocessor.PreprocessMarkdown(ctx, processed)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := e.htmlConverter.ToHTML(ctx, processed)
	if err != nil {
		return "", err
	}
	body = pipeline.ConvertMarkPlaceholders(body)

	page, err := e.compositor.Compose(ctx, title, body, diagrams)
	if err != nil {
		return "", err
	}

	e.logger.Debug("composed html",
		slog.String("title", title),
		slog.Int("diagrams", len(diagrams)),
		slog.Int("bytes", len(page)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return page, nil
}

// ExportPDF composes the HTML page for markdown and prints it to PDF.
func (e *Exporter) ExportPDF(ctx context.Context, markdown string) ([]byte, error) {
	page, err := e.ExportHTML(ctx, markdown)
	if err != nil {
		return nil, err
	}
	return e.RenderPDF(ctx, page)
}

// RenderPDF prints an already composed HTML page.
func (e *Exporter) RenderPDF(ctx context.Context, page string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.renderer.Render(ctx, page)
}

// CheckEngine returns the browser a PDF render would launch, or an error
// wrapping ErrEngineUnavailable.
func (e *Exporter) CheckEngine() (string, error) {
	return e.renderer.Available()
}

// PDFAvailable reports whether PDF export can run on this host.
func (e *Exporter) PDFAvailable() bool {
	_, err := e.CheckEngine()
	return err == nil
}

// DiagramsEnabled reports whether composed pages render mermaid diagrams.
func (e *Exporter) DiagramsEnabled() bool {
	return e.compositor.DiagramsEnabled()
}
