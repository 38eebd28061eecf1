package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma separated
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Subcommands []string
	FilePattern string // glob for file arguments, empty if none
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"format": {Values: []string{"html", "pdf"}},
	"config": {FileGlob: "*.yaml,*.yml"},
	"db":     {FileGlob: "*.db"},
	"file":   {FileGlob: "*.md,*.markdown"},
	"output": {FileGlob: "*"},
}

var (
	collectionSubcommands = []string{"list", "get", "create", "update", "delete"}
	documentSubcommands   = []string{"list", "get", "create", "update", "delete"}
)

// buildFlagSet registers the flags of command name, reusing the same
// registration as the command itself. Returns nil for flagless commands.
func buildFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var (
		common commonFlags
		out    outputFlags
		ef     exportFlags
	)

	switch name {
	case "collections":
		addCommonFlags(fs, &common)
		addOutputFlags(fs, &out)
		addCollectionFlags(fs, &collectionFlags{})
	case "documents":
		addCommonFlags(fs, &common)
		addOutputFlags(fs, &out)
		addDocumentFlags(fs, &documentFlags{})
	case "export", "render":
		addCommonFlags(fs, &common)
		addExportFlags(fs, &ef)
	case "export-collection":
		addCommonFlags(fs, &common)
		addExportFlags(fs, &ef)
		addWorkersFlag(fs, &ef)
	case "serve":
		var addr string
		addCommonFlags(fs, &common)
		addServeFlags(fs, &addr)
	case "doctor":
		addCommonFlags(fs, &common)
		addOutputFlags(fs, &out)
	default:
		return nil
	}
	return fs
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	if fs == nil {
		return nil
	}
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	defs := []commandDef{
		{Name: "collections", Desc: "Manage collections", Subcommands: collectionSubcommands},
		{Name: "documents", Desc: "Manage documents", Subcommands: documentSubcommands},
		{Name: "export", Desc: "Export a stored document to HTML or PDF"},
		{Name: "export-collection", Desc: "Export every document of a collection"},
		{Name: "render", Desc: "Export a markdown file without the store", FilePattern: "*.md,*.markdown"},
		{Name: "serve", Desc: "Serve the HTTP API"},
		{Name: "doctor", Desc: "Check the export environment"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script",
			Subcommands: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}},
	}
	for i := range defs {
		defs[i].Flags = extractFlagsFromFlagSet(buildFlagSet(defs[i].Name))
	}
	return defs
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	case ShellPowerShell:
		script = generatePowerShell(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for mdnotes\n")
	b.WriteString("_mdnotes_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")

	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${prev}\" in\n")
	for _, f := range valueFlags(cmds) {
		fmt.Fprintf(&b, "        %s)\n", strings.Join(flagNames(f), "|"))
		if f.Type == flagEnum {
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(f.Values, " "))
		} else {
			b.WriteString("            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n")
		}
		b.WriteString("            return 0\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if len(c.Subcommands) > 0 {
			b.WriteString("            if [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(c.Subcommands, " "))
			b.WriteString("                return 0\n")
			b.WriteString("            fi\n")
		}
		fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(longFlags(c.Flags), " "))
		if c.FilePattern != "" {
			b.WriteString("            [[ ${cur} != -* ]] && COMPREPLY=( $(compgen -f -- \"${cur}\") )\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _mdnotes_completions mdnotes\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

var zshEscaper = strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)

func generateZsh(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef mdnotes\n\n")
	b.WriteString("_mdnotes() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscaper.Replace(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case ${words[2]} in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if len(c.Subcommands) > 0 {
			b.WriteString("            if (( CURRENT == 3 )); then\n")
			fmt.Fprintf(&b, "                local -a subcommands; subcommands=(%s)\n", strings.Join(c.Subcommands, " "))
			b.WriteString("                _describe 'subcommand' subcommands\n")
			b.WriteString("                return\n")
			b.WriteString("            fi\n")
			b.WriteString("            shift 2 words; (( CURRENT -= 2 ))\n")
		} else {
			b.WriteString("            shift words; (( CURRENT-- ))\n")
		}
		b.WriteString("            _arguments")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, " \\\n                %s", zshFlagSpec(f))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, " \\\n                '*:file:_files -g \"%s\"'", zshGlob(c.FilePattern))
		} else {
			b.WriteString(" \\\n                '*:argument:'")
		}
		b.WriteString("\n            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_mdnotes \"$@\"\n")
	return b.String()
}

func zshFlagSpec(f flagDef) string {
	desc := zshEscaper.Replace(f.Desc)
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(":%s:_files -g \"%s\"", f.Long, zshGlob(f.FileGlob))
	default:
		action = ":" + f.Long + ":"
	}
	if f.Short == "" {
		return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// zshGlob turns "*.md,*.markdown" into "*.md *.markdown".
func zshGlob(pattern string) string {
	return strings.ReplaceAll(pattern, ",", " ")
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

var fishEscaper = strings.NewReplacer("'", `\'`)

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for mdnotes\n")
	b.WriteString("function __fish_mdnotes_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_mdnotes_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c mdnotes -f\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdnotes -n __fish_mdnotes_needs_command -a %s -d '%s'\n", c.Name, fishEscaper.Replace(c.Desc))
	}
	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_mdnotes_using_command %s'", c.Name)
		if len(c.Subcommands) > 0 {
			fmt.Fprintf(&b, "complete -c mdnotes -n %s -a '%s'\n", cond, strings.Join(c.Subcommands, " "))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c mdnotes -n %s -F\n", cond)
		}
		for _, f := range c.Flags {
			line := "complete -c mdnotes -n " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			default:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'", fishEscaper.Replace(f.Desc))
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# PowerShell completion for mdnotes\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mdnotes -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    $candidates = @{\n")
	for _, c := range cmds {
		words := append(append([]string{}, c.Subcommands...), longFlags(c.Flags)...)
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, psList(words))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    if ($elements.Count -eq 1 -or ($elements.Count -eq 2 -and $wordToComplete -ne '')) {\n")
	fmt.Fprintf(&b, "        $words = @(%s)\n", psList(commandNames(cmds)))
	b.WriteString("    } else {\n")
	b.WriteString("        $words = $candidates[$elements[1]]\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $words | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}

func psList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + w + "'"
	}
	return strings.Join(quoted, ", ")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

func longFlags(flags []flagDef) []string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = "--" + f.Long
	}
	return names
}

func flagNames(f flagDef) []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

// valueFlags returns the enum and file flags of all commands, deduplicated
// by long name and sorted.
func valueFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]flagDef)
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type == flagEnum || f.Type == flagFile {
				seen[f.Long] = f
			}
		}
	}
	out := make([]flagDef, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Long < out[j].Long })
	return out
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdnotes completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mdnotes completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdnotes completion fish > ~/.config/fish/completions/mdnotes.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    mdnotes completion powershell | Out-String | Invoke-Expression")
}
