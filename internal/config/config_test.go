package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-mdnotes/internal/yamlutil"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if !cfg.Export.Diagrams {
		t.Error("Export.Diagrams = false, want true")
	}
	if cfg.PDF.Timeout.Std() != DefaultTimeout {
		t.Errorf("PDF.Timeout = %v, want %v", cfg.PDF.Timeout.Std(), DefaultTimeout)
	}
	if cfg.PDF.SettleDelay.Std() != time.Second {
		t.Errorf("PDF.SettleDelay = %v, want 1s", cfg.PDF.SettleDelay.Std())
	}
	if cfg.PDF.ViewportWidth != 1280 || cfg.PDF.ViewportHeight != 1024 {
		t.Errorf("viewport = %dx%d", cfg.PDF.ViewportWidth, cfg.PDF.ViewportHeight)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "long store path",
			mutate:  func(c *Config) { c.Store.Path = strings.Repeat("p", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
			wantMsg: "store.path",
		},
		{
			name:    "diagram script not a URL",
			mutate:  func(c *Config) { c.Export.DiagramScript = "file:///tmp/mermaid.js" },
			wantErr: ErrInvalidValue,
			wantMsg: "export.diagramScript",
		},
		{
			name:   "diagram script URL",
			mutate: func(c *Config) { c.Export.DiagramScript = "https://assets.local/mermaid.js" },
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.PDF.Timeout = 0 },
			wantErr: ErrInvalidValue,
			wantMsg: "pdf.timeout",
		},
		{
			name:    "negative settle delay",
			mutate:  func(c *Config) { c.PDF.SettleDelay = Duration(-time.Second) },
			wantErr: ErrInvalidValue,
			wantMsg: "pdf.settleDelay",
		},
		{
			name: "settle delay longer than timeout",
			mutate: func(c *Config) {
				c.PDF.Timeout = Duration(time.Second)
				c.PDF.SettleDelay = Duration(2 * time.Second)
			},
			wantErr: ErrInvalidValue,
		},
		{
			name:   "zero settle delay",
			mutate: func(c *Config) { c.PDF.SettleDelay = 0 },
		},
		{
			name:    "viewport width",
			mutate:  func(c *Config) { c.PDF.ViewportWidth = 0 },
			wantErr: ErrInvalidValue,
			wantMsg: "pdf.viewportWidth",
		},
		{
			name:    "viewport height",
			mutate:  func(c *Config) { c.PDF.ViewportHeight = MaxViewportSize + 1 },
			wantErr: ErrInvalidValue,
			wantMsg: "pdf.viewportHeight",
		},
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: ErrInvalidValue,
			wantMsg: "log.level",
		},
		{
			name:   "log level case-insensitive",
			mutate: func(c *Config) { c.Log.Level = "DEBUG" },
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrInvalidValue,
			wantMsg: "log.format",
		},
		{
			name:    "date format",
			mutate:  func(c *Config) { c.Display.DateFormat = "[unclosed" },
			wantMsg: "display.dateFormat",
		},
		{
			name:   "date preset",
			mutate: func(c *Config) { c.Display.DateFormat = "european" },
		},
		{
			name:    "server addr",
			mutate:  func(c *Config) { c.Server.Addr = "localhost" },
			wantErr: ErrInvalidValue,
			wantMsg: "server.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil && tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, dir, "full.yaml", `
store:
  path: /var/lib/mdnotes/notes.db
export:
  diagrams: false
  style: default
pdf:
  timeout: 1m
  settleDelay: 250ms
  browserBin: /usr/bin/chromium
log:
  level: debug
  format: json
display:
  dateFormat: long
server:
  addr: 127.0.0.1:9000
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Store.Path != "/var/lib/mdnotes/notes.db" || cfg.Export.Diagrams {
			t.Errorf("store/export = %+v %+v", cfg.Store, cfg.Export)
		}
		if cfg.PDF.Timeout.Std() != time.Minute || cfg.PDF.SettleDelay.Std() != 250*time.Millisecond {
			t.Errorf("pdf durations = %v %v", cfg.PDF.Timeout.Std(), cfg.PDF.SettleDelay.Std())
		}
		if cfg.Log.Format != "json" || cfg.Server.Addr != "127.0.0.1:9000" {
			t.Errorf("log/server = %+v %+v", cfg.Log, cfg.Server)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, dir, "partial.yaml", "log:\n  level: warn\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Log.Level != "warn" || cfg.Log.Format != DefaultLogFormat {
			t.Errorf("Log = %+v", cfg.Log)
		}
		if !cfg.Export.Diagrams || cfg.PDF.ViewportWidth != DefaultViewportWidth {
			t.Error("absent fields lost their defaults")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, dir, "empty.yaml", "")
		cfg, err := LoadConfig(path)
		if err != nil || cfg.Server.Addr != DefaultServerAddr {
			t.Errorf("LoadConfig(empty) = %+v, %v", cfg, err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, dir, "unknown.yaml", "pdf:\n  paperSize: a4\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, dir, "duration.yaml", "pdf:\n  timeout: soon\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, dir, "invalid.yaml", "log:\n  format: xml\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)

	writeConfig(t, dir, "work.yml", "server:\n  addr: 127.0.0.1:8001\n")

	cfg, err := LoadConfig("work")
	if err != nil {
		t.Fatalf("LoadConfig(work) error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8001" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	_, err = LoadConfig("nope")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "nope.yaml") {
		t.Errorf("error %q should list tried paths", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Error("expected defaults when no config exists")
	}

	writeConfig(t, dir, DefaultConfigName+".yaml", "log:\n  level: error\n")
	cfg, err = LoadOrDefault("")
	if err != nil || cfg.Log.Level != "error" {
		t.Errorf("LoadOrDefault() = %+v, %v", cfg.Log, err)
	}
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")

	paths := SearchPaths("notes")
	if len(paths) < 2 || paths[0] != "notes.yaml" || paths[1] != "notes.yml" {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	found := false
	for _, p := range paths {
		if strings.Contains(p, AppDirName) {
			found = true
		}
	}
	if !found {
		t.Errorf("SearchPaths() should include the user config dir: %v", paths)
	}
}

// ---------------------------------------------------------------------------
// TestStorePath / TestDataDir
// ---------------------------------------------------------------------------

func TestStorePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg := DefaultConfig()
	cfg.Store.Path = "/explicit/notes.db"
	if got, _ := cfg.StorePath(); got != "/explicit/notes.db" {
		t.Errorf("StorePath() = %q", got)
	}

	cfg.Store.Path = ""
	got, err := cfg.StorePath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != DefaultStoreFile || !strings.Contains(got, AppDirName) {
		t.Errorf("StorePath() = %q", got)
	}
}

func TestDuration_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.PDF.Timeout = Duration(90 * time.Second)

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "timeout: 1m30s") {
		t.Errorf("marshaled config = %s", out)
	}
}
