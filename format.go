package mdnotes

import (
	"fmt"
	"strings"
)

// ExportFormat is the output format of an export. The zero value is invalid.
type ExportFormat int

// Supported formats.
const (
	FormatHTML ExportFormat = iota + 1
	FormatPDF
)

// SupportedFormats lists every format in declaration order.
var SupportedFormats = []ExportFormat{FormatHTML, FormatPDF}

// ParseExportFormat resolves a case-insensitive token ("html", "PDF", ...).
// Unknown tokens return ErrUnsupportedFormat naming the supported set.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return 0, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, s, supportedList())
	}
}

// String returns the lowercase token of f.
func (f ExportFormat) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatPDF:
		return "pdf"
	default:
		return fmt.Sprintf("ExportFormat(%d)", int(f))
	}
}

// Extension returns the conventional file extension without the dot.
// It is informational: output paths are never checked against it.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatPDF:
		return "pdf"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f ExportFormat) MarshalText() ([]byte, error) {
	if f.Extension() == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ExportFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseExportFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func supportedList() string {
	names := make([]string, len(SupportedFormats))
	for i, f := range SupportedFormats {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
