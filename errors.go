package mdnotes

import (
	"errors"

	"github.com/alnah/go-mdnotes/internal/assets"
	"github.com/alnah/go-mdnotes/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Markdown to HTML stages.
	ErrParse           = pipeline.ErrParse
	ErrGenerate        = pipeline.ErrGenerate
	ErrInvalidTemplate = pipeline.ErrInvalidTemplate

	// PDF rendering. ErrRender always accompanies one stage error.
	ErrEngineUnavailable = errors.New("no compatible browser engine found")
	ErrRender            = errors.New("PDF rendering failed")
	ErrBrowserLaunch     = errors.New("failed to launch browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")
	ErrPDFGeneration     = errors.New("PDF generation failed")

	// Output.
	ErrWriteOutput = errors.New("failed to write file")
	ErrInvalidPDF  = errors.New("invalid PDF")

	// Asset loading errors.
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrInvalidAssetPath = assets.ErrInvalidBasePath

	// Pool.
	ErrPoolClosed = errors.New("exporter pool closed")
)
