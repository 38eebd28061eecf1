package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdnotes/internal/store"
)

// runCollections dispatches `mdnotes collections <subcommand>`.
func runCollections(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printCollectionsUsage(env.Stderr)
		return fmt.Errorf("%w: missing collections subcommand", ErrUsage)
	}
	sub, rest := args[0], args[1:]

	var (
		common commonFlags
		out    outputFlags
		cf     collectionFlags
	)
	fs := newFlagSet("collections "+sub, env.Stderr, printCollectionsUsage)
	addCommonFlags(fs, &common)
	switch sub {
	case "list", "get":
		addOutputFlags(fs, &out)
	case "create", "update":
		addOutputFlags(fs, &out)
		addCollectionFlags(fs, &cf)
	case "delete":
	default:
		printCollectionsUsage(env.Stderr)
		return fmt.Errorf("%w: unknown collections subcommand %q", ErrUsage, sub)
	}
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	var id int64
	if sub == "list" || sub == "create" {
		if fs.NArg() != 0 {
			return fmt.Errorf("%w: collections %s takes no arguments", ErrUsage, sub)
		}
	} else {
		var err error
		if id, err = parseIDArg(fs, "collection-id"); err != nil {
			return err
		}
	}

	ws, err := openWorkspace(ctx, &common, 0, env)
	if err != nil {
		return err
	}
	defer ws.Close()
	dateFormat := ws.cfg.Display.DateFormat

	switch sub {
	case "list":
		cols, err := ws.app.GetCollections(ctx)
		if err != nil {
			return err
		}
		if out.json {
			return printJSON(env.Stdout, cols)
		}
		return printCollections(env.Stdout, cols, dateFormat)

	case "get":
		col, err := ws.app.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if col == nil {
			return collectionNotFound(id)
		}
		if out.json {
			return printJSON(env.Stdout, col)
		}
		return printCollection(env.Stdout, *col, dateFormat)

	case "create":
		var desc *string
		if fs.Changed("description") {
			desc = &cf.description
		}
		col, err := ws.app.CreateCollection(ctx, cf.name, desc)
		if err != nil {
			return err
		}
		if out.json {
			return printJSON(env.Stdout, col)
		}
		if !common.quiet {
			fmt.Fprintf(env.Stdout, "created collection %d\n", col.ID)
		}
		return nil

	case "update":
		current, err := ws.app.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return collectionNotFound(id)
		}
		name, desc := current.Name, current.Description
		if fs.Changed("name") {
			name = cf.name
		}
		if fs.Changed("description") {
			desc = &cf.description
		}
		col, err := ws.app.UpdateCollection(ctx, id, name, desc)
		if err != nil {
			return err
		}
		if out.json {
			return printJSON(env.Stdout, col)
		}
		if !common.quiet {
			fmt.Fprintf(env.Stdout, "updated collection %d\n", col.ID)
		}
		return nil
	}

	deleted, err := ws.app.DeleteCollection(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return collectionNotFound(id)
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "deleted collection %d\n", id)
	}
	return nil
}

func collectionNotFound(id int64) error {
	return fmt.Errorf("collection %d: %w", id, store.ErrNotFound)
}

// parseFlags parses args into fs. Parse errors wrap ErrUsage; -h returns
// flag.ErrHelp unchanged.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// parseIDArg reads the single positional id argument of fs.
func parseIDArg(fs *flag.FlagSet, what string) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("%w: expected exactly one <%s>", ErrUsage, what)
	}
	return parseID(fs.Arg(0), what)
}

// parseID parses a positive record id.
func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrUsage, what, s)
	}
	return id, nil
}
