package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  collections        List, show, create, update or delete collections")
	fmt.Fprintln(w, "  documents          List, show, create, update or delete documents")
	fmt.Fprintln(w, "  export             Export a stored document to HTML or PDF")
	fmt.Fprintln(w, "  export-collection  Export every document of a collection")
	fmt.Fprintln(w, "  render             Export a markdown file without the store")
	fmt.Fprintln(w, "  serve              Serve the HTTP API")
	fmt.Fprintln(w, "  doctor             Check the export environment")
	fmt.Fprintln(w, "  completion         Generate shell completion script")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w, "  help               Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdnotes help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every store-backed command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --db <path>           Database file (overrides store.path)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

// printCollectionsUsage prints usage for the collections command.
func printCollectionsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes collections <subcommand> [flags] [id]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                      List collections, newest first")
	fmt.Fprintln(w, "  get <id>                  Show one collection")
	fmt.Fprintln(w, "  create --name <s>         Create a collection")
	fmt.Fprintln(w, "  update <id>               Change name and/or description")
	fmt.Fprintln(w, "  delete <id>               Delete a collection and its documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -n, --name <s>            Collection name (create, update)")
	fmt.Fprintln(w, "  -d, --description <s>     Description, \"\" clears it (create, update)")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDocumentsUsage prints usage for the documents command.
func printDocumentsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes documents <subcommand> [flags] [id]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list <collection-id>      List documents of a collection, newest first")
	fmt.Fprintln(w, "  get <id>                  Print the markdown of a document")
	fmt.Fprintln(w, "  create <collection-id>    Create a document (content from --file or stdin)")
	fmt.Fprintln(w, "  update <id>               Change name and/or content")
	fmt.Fprintln(w, "  delete <id>               Delete a document")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -n, --name <s>            Document name (create, update)")
	fmt.Fprintln(w, "      --file <path>         Markdown file, \"-\" for stdin (create, update)")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes export <document-id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a stored document. Without --output the file is written to the")
	fmt.Fprintln(w, "current directory, named after the document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --format <s>          Export format: html, pdf (default pdf)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printExportCollectionUsage prints usage for the export-collection command.
func printExportCollectionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes export-collection <collection-id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export every document of a collection, several at a time.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --format <s>          Export format: html, pdf (default pdf)")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default .)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel exports (0 = auto)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes render <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a markdown file without touching the store. Use \"-\" to read stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --format <s>          Export format: html, pdf (default pdf)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file, \"-\" for stdout")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the command surface as a JSON HTTP API until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:7420)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnotes doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser, the data directory and the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "collections":
		printCollectionsUsage(env.Stdout)
	case "documents":
		printDocumentsUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "export-collection":
		printExportCollectionUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdnotes version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdnotes help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
