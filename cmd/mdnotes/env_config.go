package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdnotes/internal/config"
)

// envPrefix marks the variables read by loadEnvConfig.
const envPrefix = "MDNOTES_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDNOTES_CONFIG: config file name or path
	DBPath     string        // MDNOTES_DB: database file
	BrowserBin string        // MDNOTES_BROWSER_BIN: Chromium executable
	Timeout    time.Duration // MDNOTES_TIMEOUT: PDF render timeout
	LogLevel   string        // MDNOTES_LOG_LEVEL: debug, info, warn, error
	ServerAddr string        // MDNOTES_SERVER_ADDR: serve listen address
	Workers    int           // MDNOTES_WORKERS: export-collection workers
}

// knownEnvVars lists valid MDNOTES_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDNOTES_CONFIG":      true,
	"MDNOTES_DB":          true,
	"MDNOTES_BROWSER_BIN": true,
	"MDNOTES_TIMEOUT":     true,
	"MDNOTES_LOG_LEVEL":   true,
	"MDNOTES_SERVER_ADDR": true,
	"MDNOTES_WORKERS":     true,
	"MDNOTES_CONTAINER":   true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDNOTES_CONFIG"),
		DBPath:     os.Getenv("MDNOTES_DB"),
		BrowserBin: os.Getenv("MDNOTES_BROWSER_BIN"),
		LogLevel:   os.Getenv("MDNOTES_LOG_LEVEL"),
		ServerAddr: os.Getenv("MDNOTES_SERVER_ADDR"),
	}

	if timeout := os.Getenv("MDNOTES_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDNOTES_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MDNOTES_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults.
// Flags are applied afterwards by the caller.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.DBPath != "" {
		cfg.Store.Path = env.DBPath
	}
	if env.BrowserBin != "" {
		cfg.PDF.BrowserBin = env.BrowserBin
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = config.Duration(env.Timeout)
	}
	if env.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(env.LogLevel)
	}
	if env.ServerAddr != "" {
		cfg.Server.Addr = env.ServerAddr
	}
}
