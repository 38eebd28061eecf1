package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-mdnotes/internal/config"
	"github.com/alnah/go-mdnotes/internal/fileutil"
)

// versionProbeTimeout bounds `<browser> --version`.
const versionProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Browser  browserInfo `json:"browser"`
	Env      envInfo     `json:"environment"`
	Store    storeInfo   `json:"store"`
	Export   exportInfo  `json:"export"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds render engine detection results.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// storeInfo describes the database location.
type storeInfo struct {
	Path     string `json:"path,omitempty"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// exportInfo summarizes export settings.
type exportInfo struct {
	Diagrams bool   `json:"diagrams"`
	Script   string `json:"diagram_script,omitempty"`
	Timeout  string `json:"timeout"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	var (
		common commonFlags
		out    outputFlags
	)
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	addCommonFlags(fs, &common)
	addOutputFlags(fs, &out)
	if err := parseFlags(fs, args); err != nil {
		if isHelp(err) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	result := runDoctor(&common, env)

	if out.json {
		_ = printJSON(env.Stdout, result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(common *commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	quiet := *common
	quiet.quiet = true
	cfg, _, err := loadSettings(&quiet, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		cfg = config.DefaultConfig()
	}

	checkBrowser(result, cfg, env)
	checkEnvironment(result)
	checkStore(result, cfg)
	checkSystem(result)
	result.Export = exportInfo{
		Diagrams: cfg.Export.Diagrams,
		Script:   cfg.Export.DiagramScript,
		Timeout:  cfg.PDF.Timeout.Std().String(),
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkBrowser resolves the render engine the exporter would launch.
// A missing browser is a warning: HTML export still works.
func checkBrowser(result *doctorResult, cfg *config.Config, env *Environment) {
	path, err := env.LookBrowser(cfg.PDF.BrowserBin)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("PDF export unavailable: %v", err))
		return
	}

	result.Browser.Found = true
	result.Browser.Path = path
	result.Browser.Sandbox = !sandboxDisabled(result.Env.NoSandbox)

	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- browser path is resolved locally
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get browser version: %v", err))
		return
	}
	result.Browser.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// The renderer disables the sandbox itself in containers; say so.
	if (result.Env.Container || result.Env.CI) && !sandboxDisabled(result.Env.NoSandbox) {
		result.Browser.Sandbox = false
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MDNOTES_CONTAINER") == "1" {
		return true, "MDNOTES_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkStore reports where the database lives and whether it can be written.
func checkStore(result *doctorResult, cfg *config.Config) {
	path, err := cfg.StorePath()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Data directory: %v", err))
		return
	}
	result.Store.Path = path
	result.Store.Exists = fileutil.FileExists(path)

	dir := filepath.Dir(path)
	if !fileutil.DirExists(dir) {
		// Created on first use.
		result.Store.Writable = true
		return
	}
	if err := probeWritable(dir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Data directory not writable: %s", dir))
		return
	}
	result.Store.Writable = true
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	if err := probeWritable(tmpDir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	result.System.TempWritable = true
}

// probeWritable creates and removes a file in dir.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".mdnotes-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func sandboxDisabled(v string) bool {
	v = strings.ToLower(v)
	return v == "1" || v == "true"
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdnotes doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser (PDF export)")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found (HTML export only)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Store")
	if r.Store.Path != "" {
		state := "will be created"
		if r.Store.Exists {
			state = "exists"
		}
		fmt.Fprintf(w, "  [OK] Database: %s (%s)\n", r.Store.Path, state)
	}
	if r.Store.Writable {
		fmt.Fprintln(w, "  [OK] Data directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Data directory: not writable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Export")
	if r.Export.Diagrams {
		fmt.Fprintln(w, "  [OK] Diagrams: enabled")
	} else {
		fmt.Fprintln(w, "  [OK] Diagrams: disabled")
	}
	fmt.Fprintf(w, "  [OK] PDF timeout: %s\n", r.Export.Timeout)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
