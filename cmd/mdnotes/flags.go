package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	db      string
	quiet   bool
	verbose bool
}

// addCommonFlags registers the shared flags on fs.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.db, "db", "", "database file (overrides store.path)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// outputFlags holds flags for listing commands.
type outputFlags struct {
	json bool
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.json, "json", false, "print JSON")
}

// collectionFlags holds collections create/update flags.
type collectionFlags struct {
	name        string
	description string
}

func addCollectionFlags(fs *flag.FlagSet, f *collectionFlags) {
	fs.StringVarP(&f.name, "name", "n", "", "collection name")
	fs.StringVarP(&f.description, "description", "d", "", "collection description")
}

// documentFlags holds documents create/update flags.
type documentFlags struct {
	name string
	file string
}

func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.name, "name", "n", "", "document name")
	fs.StringVar(&f.file, "file", "", "read content from file (default: stdin)")
}

// exportFlags holds flags for the export commands.
type exportFlags struct {
	format  string
	output  string
	workers int
}

func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVarP(&f.format, "format", "f", "pdf", "export format: html, pdf")
	fs.StringVarP(&f.output, "output", "o", "", "output file (directory for export-collection)")
}

func addWorkersFlag(fs *flag.FlagSet, f *exportFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exports (0 = auto)")
}

// addServeFlags registers the serve listen address.
func addServeFlags(fs *flag.FlagSet, addr *string) {
	fs.StringVarP(addr, "addr", "a", "", "listen address (overrides server.addr)")
}

// newFlagSet creates a ContinueOnError flag set whose -h prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(w) }
	return fs
}
