package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	mdnotes "github.com/alnah/go-mdnotes"
	"github.com/alnah/go-mdnotes/internal/fileutil"
)

// Output file permissions.
const outputPerm = 0o644

// runExport handles `mdnotes export <document-id>`.
// Without -o the file is written to the current directory, named after the
// document.
func runExport(ctx context.Context, args []string, env *Environment) error {
	var (
		common commonFlags
		ef     exportFlags
	)
	fs := newFlagSet("export", env.Stderr, printExportUsage)
	addCommonFlags(fs, &common)
	addExportFlags(fs, &ef)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseIDArg(fs, "document-id")
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, &common, 0, env)
	if err != nil {
		return err
	}
	defer ws.Close()

	output := ef.output
	if output == "" {
		doc, err := ws.app.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentNotFound(id)
		}
		format, err := mdnotes.ParseExportFormat(ef.format)
		if err != nil {
			return err
		}
		output = fileutil.SafeFileName(doc.Name, "document-"+strconv.FormatInt(id, 10)) + "." + format.Extension()
	}

	if err := ws.app.ExportDocument(ctx, id, ef.format, output); err != nil {
		return err
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "wrote %s\n", output)
	}
	return nil
}

// runExportCollection handles `mdnotes export-collection <collection-id>`.
func runExportCollection(ctx context.Context, args []string, env *Environment) error {
	var (
		common commonFlags
		ef     exportFlags
	)
	fs := newFlagSet("export-collection", env.Stderr, printExportCollectionUsage)
	addCommonFlags(fs, &common)
	addExportFlags(fs, &ef)
	addWorkersFlag(fs, &ef)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseIDArg(fs, "collection-id")
	if err != nil {
		return err
	}
	if ef.workers < 0 {
		return fmt.Errorf("%w: --workers must not be negative", ErrUsage)
	}
	if ef.output == "" {
		ef.output = "."
	}

	ws, err := openWorkspace(ctx, &common, ef.workers, env)
	if err != nil {
		return err
	}
	defer ws.Close()

	files, err := ws.app.ExportCollection(ctx, id, ef.format, ef.output)
	if !common.quiet {
		if len(files) == 0 && err == nil {
			fmt.Fprintf(env.Stdout, "collection %d has no documents\n", id)
		}
		for _, f := range files {
			if f.Err != nil {
				fmt.Fprintf(env.Stdout, "FAIL %s (document %d)\n", f.Path, f.DocumentID)
				continue
			}
			fmt.Fprintf(env.Stdout, "wrote %s (%d bytes)\n", f.Path, f.Bytes)
		}
	}
	return err
}

// runRender handles `mdnotes render <file.md>`: an export that bypasses the
// store. Without -o the output sits next to the input with the format's
// extension. "-o -" writes to stdout, and so does reading from stdin ("-").
func runRender(ctx context.Context, args []string, env *Environment) error {
	var (
		common commonFlags
		ef     exportFlags
	)
	fs := newFlagSet("render", env.Stderr, printRenderUsage)
	addCommonFlags(fs, &common)
	addExportFlags(fs, &ef)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: expected exactly one <file.md>", ErrUsage)
	}
	input := fs.Arg(0)

	format, err := mdnotes.ParseExportFormat(ef.format)
	if err != nil {
		return err
	}
	output := ef.output
	switch {
	case output == "" && input == "-":
		output = "-"
	case output == "":
		output = replaceExt(input, format.Extension())
	}
	if output != "-" && filepath.Clean(output) == filepath.Clean(input) {
		return fmt.Errorf("%w: output %s would overwrite the input", ErrUsage, output)
	}

	markdown, err := readContent(env, input)
	if err != nil {
		return err
	}

	cfg, _, err := loadSettings(&common, env)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, &common, env.Stderr)
	exporter, err := env.NewExporter(cfg, logger)
	if err != nil {
		return err
	}

	data, err := exporter.Export(ctx, markdown, format)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}
	if err := fileutil.WriteFileAtomic(output, data, outputPerm); err != nil {
		return fmt.Errorf("%w: %w", mdnotes.ErrWriteOutput, err)
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "wrote %s\n", output)
	}
	return nil
}

// replaceExt swaps the extension of path for ext ("pdf", "html").
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

