// Package config loads and validates the mdnotes YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-mdnotes/internal/dateutil"
	"github.com/alnah/go-mdnotes/internal/fileutil"
	"github.com/alnah/go-mdnotes/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory used under the user config and data dirs.
const AppDirName = "go-mdnotes"

// DefaultConfigName is looked up when no config is given explicitly.
const DefaultConfigName = "mdnotes"

// Defaults for fields left empty.
const (
	DefaultStoreFile      = "mdnotes.db"
	DefaultServerAddr     = "127.0.0.1:7420"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultTimeout        = 30 * time.Second
	DefaultSettleDelay    = time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 1024
)

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxURLLength       = 2048 // Browser limit
	MaxStyleNameLength = 64
	MaxAddrLength      = 255
	MaxViewportSize    = 16384
)

// Duration is a time.Duration written as "30s", "1m30s" in YAML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all configuration for the store, exports and front-ends.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Export  ExportConfig  `yaml:"export"`
	PDF     PDFConfig     `yaml:"pdf"`
	Log     LogConfig     `yaml:"log"`
	Display DisplayConfig `yaml:"display"`
	Server  ServerConfig  `yaml:"server"`
}

// StoreConfig locates the database.
type StoreConfig struct {
	Path string `yaml:"path"` // Empty = <user data dir>/go-mdnotes/mdnotes.db
}

// ExportConfig controls the markdown to HTML pipeline.
type ExportConfig struct {
	Diagrams      bool   `yaml:"diagrams"`
	DiagramScript string `yaml:"diagramScript"` // Empty = built-in CDN URL
	Style         string `yaml:"style"`         // Asset style name
	AssetPath     string `yaml:"assetPath"`     // Empty = embedded assets only
}

// PDFConfig controls the browser renderer.
type PDFConfig struct {
	Timeout        Duration `yaml:"timeout"`
	SettleDelay    Duration `yaml:"settleDelay"`
	BrowserBin     string   `yaml:"browserBin"` // Empty = ROD_BROWSER_BIN, then autodetect
	ViewportWidth  int      `yaml:"viewportWidth"`
	ViewportHeight int      `yaml:"viewportHeight"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DisplayConfig controls CLI listings.
type DisplayConfig struct {
	DateFormat string `yaml:"dateFormat"` // dateutil preset or token pattern
}

// ServerConfig controls `mdnotes serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is loaded.
func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{Diagrams: true},
		PDF: PDFConfig{
			Timeout:        Duration(DefaultTimeout),
			SettleDelay:    Duration(DefaultSettleDelay),
			ViewportWidth:  DefaultViewportWidth,
			ViewportHeight: DefaultViewportHeight,
		},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Display: DisplayConfig{DateFormat: dateutil.DefaultDateFormat},
		Server:  ServerConfig{Addr: DefaultServerAddr},
	}
}

// Validate checks every field. Called automatically by LoadConfig, but
// available for callers that build or override a Config in code.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"store.path", c.Store.Path, MaxPathLength},
		{"export.diagramScript", c.Export.DiagramScript, MaxURLLength},
		{"export.style", c.Export.Style, MaxStyleNameLength},
		{"export.assetPath", c.Export.AssetPath, MaxPathLength},
		{"pdf.browserBin", c.PDF.BrowserBin, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Export.DiagramScript != "" && !fileutil.IsURL(c.Export.DiagramScript) {
		return fmt.Errorf("%w: export.diagramScript must be an http(s) URL, got %q", ErrInvalidValue, c.Export.DiagramScript)
	}

	if c.PDF.Timeout.Std() <= 0 {
		return fmt.Errorf("%w: pdf.timeout must be positive, got %s", ErrInvalidValue, c.PDF.Timeout.Std())
	}
	if c.PDF.SettleDelay.Std() < 0 {
		return fmt.Errorf("%w: pdf.settleDelay must not be negative, got %s", ErrInvalidValue, c.PDF.SettleDelay.Std())
	}
	if c.PDF.SettleDelay.Std() >= c.PDF.Timeout.Std() {
		return fmt.Errorf("%w: pdf.settleDelay (%s) must be shorter than pdf.timeout (%s)",
			ErrInvalidValue, c.PDF.SettleDelay.Std(), c.PDF.Timeout.Std())
	}
	if err := validateRange("pdf.viewportWidth", c.PDF.ViewportWidth, 1, MaxViewportSize); err != nil {
		return err
	}
	if err := validateRange("pdf.viewportHeight", c.PDF.ViewportHeight, 1, MaxViewportSize); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	if _, err := dateutil.Layout(c.Display.DateFormat); err != nil {
		return fmt.Errorf("display.dateFormat: %w", err)
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("%w: server.addr %q: %v", ErrInvalidValue, c.Server.Addr, err)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateRange(fieldName string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidValue, fieldName, lo, hi, v)
	}
	return nil
}

// StorePath returns store.path, or the default database file in the user
// data directory when it is empty.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultStoreFile), nil
}

// DataDir returns the per-user data directory of the application.
// Linux honors XDG_DATA_HOME and falls back to ~/.local/share; other systems
// use the user config directory.
func DataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating data directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", AppDirName), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating data directory: %w", err)
	}
	return filepath.Join(dir, AppDirName), nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		if errors.Is(err, yamlutil.ErrNilData) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads nameOrPath when set. With an empty value it looks for
// DefaultConfigName and returns DefaultConfig when none exists.
func LoadOrDefault(nameOrPath string) (*Config, error) {
	if nameOrPath != "" {
		return LoadConfig(nameOrPath)
	}
	cfg, err := LoadConfig(DefaultConfigName)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// SearchPaths lists the files LoadConfig tries for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries the current directory, then ~/.config/go-mdnotes/, each with .yaml
// then .yml.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
