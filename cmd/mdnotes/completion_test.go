package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Script generation per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell   Shell
		markers []string
	}{
		{ShellBash, []string{"_mdnotes_completions()", "complete -F _mdnotes_completions mdnotes", "compgen", "export-collection", "--format", "html pdf"}},
		{ShellZsh, []string{"#compdef mdnotes", "_mdnotes", "_arguments", "_describe", "export-collection"}},
		{ShellFish, []string{"complete -c mdnotes", "__fish_mdnotes_needs_command", "__fish_mdnotes_using_command", "-l format"}},
		{ShellPowerShell, []string{"Register-ArgumentCompleter -Native -CommandName mdnotes", "CompletionResult", "export-collection"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			out := buf.String()
			for _, m := range tt.markers {
				if !strings.Contains(out, m) {
					t.Errorf("%s script missing %q", tt.shell, m)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{"", "tcsh", "BASH"} {
		var buf bytes.Buffer
		err := GenerateCompletion(&buf, shell)
		if !errors.Is(err, ErrUnsupportedShell) {
			t.Errorf("GenerateCompletion(%q) error = %v, want ErrUnsupportedShell", shell, err)
		}
		if buf.Len() != 0 {
			t.Errorf("GenerateCompletion(%q) wrote output on error", shell)
		}
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Registry mirrors the real flag sets
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	cmds := getCommands()
	byName := make(map[string]commandDef, len(cmds))
	for _, c := range cmds {
		byName[c.Name] = c
	}

	for name := range commands {
		if _, ok := byName[name]; !ok {
			t.Errorf("command %q has no completion entry", name)
		}
	}

	hasFlag := func(c commandDef, long string) (flagDef, bool) {
		for _, f := range c.Flags {
			if f.Long == long {
				return f, true
			}
		}
		return flagDef{}, false
	}

	f, ok := hasFlag(byName["export"], "format")
	if !ok || f.Type != flagEnum || strings.Join(f.Values, ",") != "html,pdf" {
		t.Errorf("export --format = %+v", f)
	}
	if f, ok := hasFlag(byName["export-collection"], "workers"); !ok || f.Type != flagInt || f.Short != "w" {
		t.Errorf("export-collection --workers = %+v", f)
	}
	if f, ok := hasFlag(byName["collections"], "config"); !ok || f.Type != flagFile {
		t.Errorf("collections --config = %+v", f)
	}
	if f, ok := hasFlag(byName["doctor"], "json"); !ok || f.Type != flagBool {
		t.Errorf("doctor --json = %+v", f)
	}
	if _, ok := hasFlag(byName["export"], "workers"); ok {
		t.Error("export should not offer --workers")
	}
	if len(byName["version"].Flags) != 0 {
		t.Errorf("version flags = %+v, want none", byName["version"].Flags)
	}
	if byName["render"].FilePattern == "" {
		t.Error("render should complete markdown files")
	}
}

// ---------------------------------------------------------------------------
// TestCompletionCommand - CLI entry point
// ---------------------------------------------------------------------------

func TestCompletionCommand(t *testing.T) {
	t.Parallel()

	c := newCLI(t)

	code, out, _ := c.run("completion")
	if code != ExitSuccess || !strings.Contains(out, "bash") {
		t.Errorf("completion without shell: exit %d, out %q", code, out)
	}

	code, out, _ = c.run("completion", "zsh")
	if code != ExitSuccess || !strings.HasPrefix(out, "#compdef mdnotes") {
		t.Errorf("completion zsh: exit %d", code)
	}

	code, _, stderr := c.run("completion", "tcsh")
	if code != ExitUsage {
		t.Errorf("completion tcsh: exit %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr, "unsupported shell") {
		t.Errorf("stderr = %q", stderr)
	}
}
