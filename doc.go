// Package mdnotes exports Markdown notes as standalone HTML pages or A4 PDFs.
//
// # Quick Start
//
//	exp, err := mdnotes.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	format, err := mdnotes.ParseExportFormat("pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := exp.Export(ctx, "# Hello\n\nWorld", format)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.pdf", out, 0o644)
//
// # Export Pipeline
//
//  1. Source normalization and title resolution (first "# " heading)
//  2. Mermaid fence extraction into private-use placeholders
//  3. Markdown preprocessing (==highlight== syntax)
//  4. Markdown to HTML via Goldmark (GFM, footnotes, chroma classes)
//  5. Composition into the page template with inlined light/dark CSS,
//     restored diagram containers and the diagram script
//  6. For PDF only: headless Chromium (go-rod) loads the page, waits a fixed
//     settling delay, and prints A4 with half-inch margins
//
// PDF always transits through the same HTML an HTML export returns.
//
// # Rendering Engine
//
// Each PDF render launches its own browser process and tears it down before
// returning, on success and on failure. The browser is never downloaded:
// when none is installed, PDF exports fail with ErrEngineUnavailable. Call
// Exporter.PDFAvailable first to warn users early.
//
// # Configuration
//
//	exp, err := mdnotes.NewExporter(
//	    mdnotes.WithTimeout(time.Minute),
//	    mdnotes.WithSettleDelay(2*time.Second),
//	    mdnotes.WithBrowserBin("/usr/bin/chromium"),
//	    mdnotes.WithAssetPath("/path/to/custom/assets"),
//	    mdnotes.WithLogger(slog.Default()),
//	)
//
// # Parallel Processing
//
// Exporter is safe for concurrent use. ExporterPool bounds how many exports
// (and therefore browser processes) run at once:
//
//	pool := mdnotes.NewExporterPool(mdnotes.ResolvePoolSize(0), exp)
//	results := pool.ExportAll(ctx, jobs)
//
// # Error Handling
//
// Errors wrap sentinels; classify them with errors.Is:
//
//	ErrUnsupportedFormat   - unknown format token, nothing else ran
//	ErrParse, ErrGenerate  - Markdown to HTML stages
//	ErrEngineUnavailable   - no Chromium-family browser on the host
//	ErrRender              - launch, page, load or print failure; also wraps
//	                         ErrBrowserLaunch, ErrPageCreate, ErrPageLoad or
//	                         ErrPDFGeneration
//	ErrWriteOutput         - writing the result to disk failed
package mdnotes
