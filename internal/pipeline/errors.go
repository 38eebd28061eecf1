package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	// ErrParse indicates Markdown could not be parsed into a document tree.
	ErrParse = errors.New("failed to parse markdown")

	// ErrGenerate indicates the document tree could not be rendered to HTML
	// or the rendered HTML could not be composed into a page.
	ErrGenerate = errors.New("failed to generate HTML")

	// ErrInvalidTemplate indicates a page template lacks a required marker.
	ErrInvalidTemplate = errors.New("invalid page template")
)
