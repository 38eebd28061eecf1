package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alnah/go-mdnotes/internal/app"
)

// maxContentSize bounds markdown read from a file or stdin.
const maxContentSize = 32 << 20

// runDocuments dispatches `mdnotes documents <subcommand>`.
func runDocuments(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printDocumentsUsage(env.Stderr)
		return fmt.Errorf("%w: missing documents subcommand", ErrUsage)
	}
	sub, rest := args[0], args[1:]

	var (
		common commonFlags
		out    outputFlags
		df     documentFlags
	)
	fs := newFlagSet("documents "+sub, env.Stderr, printDocumentsUsage)
	addCommonFlags(fs, &common)
	idName := "document-id"
	switch sub {
	case "list":
		addOutputFlags(fs, &out)
		idName = "collection-id"
	case "get":
		addOutputFlags(fs, &out)
	case "create":
		addOutputFlags(fs, &out)
		addDocumentFlags(fs, &df)
		idName = "collection-id"
	case "update":
		addOutputFlags(fs, &out)
		addDocumentFlags(fs, &df)
	case "delete":
	default:
		printDocumentsUsage(env.Stderr)
		return fmt.Errorf("%w: unknown documents subcommand %q", ErrUsage, sub)
	}
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	id, err := parseIDArg(fs, idName)
	if err != nil {
		return err
	}

	// Read content before touching the store so a bad file changes nothing.
	var content string
	switch {
	case sub == "create":
		if content, err = readContent(env, df.file); err != nil {
			return err
		}
	case sub == "update" && fs.Changed("file"):
		if content, err = readContent(env, df.file); err != nil {
			return err
		}
	}

	ws, err := openWorkspace(ctx, &common, 0, env)
	if err != nil {
		return err
	}
	defer ws.Close()

	switch sub {
	case "list":
		col, err := ws.app.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if col == nil {
			return collectionNotFound(id)
		}
		docs, err := ws.app.GetDocumentsByCollection(ctx, id)
		if err != nil {
			return err
		}
		if out.json {
			return printJSON(env.Stdout, docs)
		}
		return printDocuments(env.Stdout, docs, ws.cfg.Display.DateFormat)

	case "get":
		doc, err := ws.app.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentNotFound(id)
		}
		if out.json {
			return printJSON(env.Stdout, doc)
		}
		_, err = io.WriteString(env.Stdout, doc.Content)
		return err

	case "create":
		doc, err := ws.app.CreateDocument(ctx, id, df.name, content)
		if err != nil {
			return err
		}
		if out.json {
			return printJSON(env.Stdout, doc)
		}
		if !common.quiet {
			fmt.Fprintf(env.Stdout, "created document %d\n", doc.ID)
		}
		return nil

	case "update":
		current, err := ws.app.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return documentNotFound(id)
		}
		name := current.Name
		if fs.Changed("name") {
			name = df.name
		}
		if !fs.Changed("file") {
			content = current.Content
		}
		doc, err := ws.app.UpdateDocument(ctx, id, name, content)
		if err != nil {
			return err
		}
		if out.json {
			return printJSON(env.Stdout, doc)
		}
		if !common.quiet {
			fmt.Fprintf(env.Stdout, "updated document %d\n", doc.ID)
		}
		return nil
	}

	deleted, err := ws.app.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return documentNotFound(id)
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "deleted document %d\n", id)
	}
	return nil
}

// readContent reads markdown from path, or from stdin when path is "" or "-".
func readContent(env *Environment, path string) (string, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = env.Stdin
	} else {
		f, err := os.Open(path) // #nosec G304 -- path is chosen by the user
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadContent, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxContentSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadContent, err)
	}
	if len(data) > maxContentSize {
		return "", fmt.Errorf("%w: content exceeds %d bytes", ErrReadContent, maxContentSize)
	}
	return string(data), nil
}

func documentNotFound(id int64) error {
	return fmt.Errorf("document %d %w", id, app.ErrDocumentNotFound)
}
