package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var fixed = time.Date(2026, time.March, 7, 14, 5, 9, 0, time.UTC)

// ---------------------------------------------------------------------------
// TestParseDateFormat
// ---------------------------------------------------------------------------

func TestParseDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "iso", format: "YYYY-MM-DD", want: "2006-01-02"},
		{name: "time tokens", format: "HH:mm:ss", want: "15:04:05"},
		{name: "long month", format: "MMMM D, YYYY", want: "January 2, 2006"},
		{name: "bracket literal", format: "[Due] DD", want: "Due 02"},
		{name: "literals preserved", format: "YY/M", want: "06/1"},
		{name: "empty", format: "", wantErr: true},
		{name: "unclosed bracket", format: "[oops YYYY", wantErr: true},
		{name: "too long", format: strings.Repeat("Y", MaxDateFormatLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateFormat(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormat
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"", "2026-03-07 14:05"},
		{"iso", "2026-03-07"},
		{"ISO", "2026-03-07"},
		{"european", "07/03/2026"},
		{"us", "03/07/2026"},
		{"long", "March 7, 2026"},
		{"DD.MM.YY", "07.03.26"},
	}

	for _, tt := range tests {
		got, err := Format(fixed, tt.format)
		if err != nil {
			t.Fatalf("Format(%q) error = %v", tt.format, err)
		}
		if got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
