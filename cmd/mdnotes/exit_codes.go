package main

import (
	"context"
	"errors"
	"os"

	mdnotes "github.com/alnah/go-mdnotes"
	"github.com/alnah/go-mdnotes/internal/app"
	"github.com/alnah/go-mdnotes/internal/config"
	"github.com/alnah/go-mdnotes/internal/hints"
	"github.com/alnah/go-mdnotes/internal/store"
)

// Exit codes for the mdnotes CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, format or record
	ExitIO      = 3 // Missing record or file, permission denied, write failure
	ExitBrowser = 4 // Render engine missing or render failure
)

// Sentinel errors raised by the CLI itself.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrReadContent = errors.New("failed to read content")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdnotes.ErrEngineUnavailable) ||
		errors.Is(err, mdnotes.ErrRender) ||
		errors.Is(err, mdnotes.ErrBrowserLaunch) ||
		errors.Is(err, mdnotes.ErrPageCreate) ||
		errors.Is(err, mdnotes.ErrPageLoad) ||
		errors.Is(err, mdnotes.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdnotes.ErrUnsupportedFormat) ||
		errors.Is(err, mdnotes.ErrStyleNotFound) ||
		errors.Is(err, mdnotes.ErrInvalidAssetPath) ||
		errors.Is(err, mdnotes.ErrInvalidTemplate) ||
		errors.Is(err, store.ErrInvalid) {
		return ExitUsage
	}

	// I/O and lookup errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadContent) ||
		errors.Is(err, mdnotes.ErrWriteOutput) ||
		errors.Is(err, store.ErrOpen) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, app.ErrDocumentNotFound) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns the actionable hint appended to an error message, if any.
func hintFor(err error) string {
	switch {
	case errors.Is(err, mdnotes.ErrEngineUnavailable):
		return hints.ForEngineUnavailable()
	case errors.Is(err, mdnotes.ErrBrowserLaunch):
		return hints.ForBrowserLaunch()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultConfigName))
	case errors.Is(err, mdnotes.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, app.ErrDocumentNotFound):
		return hints.ForDocumentNotFound()
	}
	return ""
}
