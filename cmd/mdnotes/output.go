package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alnah/go-mdnotes/internal/dateutil"
	"github.com/alnah/go-mdnotes/internal/store"
)

// maxPreviewLength caps descriptions shown in tables.
const maxPreviewLength = 48

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTime renders t in local time with a dateutil format.
// An invalid format falls back to dateutil.DefaultDateFormat.
func formatTime(t time.Time, format string) string {
	s, err := dateutil.Format(t.Local(), format)
	if err != nil {
		s, _ = dateutil.Format(t.Local(), dateutil.DefaultDateFormat)
	}
	return s
}

// printCollections writes collections as an aligned table.
func printCollections(w io.Writer, cols []store.Collection, dateFormat string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUPDATED\tDESCRIPTION")
	for _, c := range cols {
		desc := ""
		if c.Description != nil {
			desc = preview(*c.Description)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, formatTime(c.UpdatedAt, dateFormat), desc)
	}
	return tw.Flush()
}

// printCollection writes one collection as labelled lines.
func printCollection(w io.Writer, c store.Collection, dateFormat string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	if c.Description != nil {
		fmt.Fprintf(tw, "Description:\t%s\n", *c.Description)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(c.CreatedAt, dateFormat))
	fmt.Fprintf(tw, "Updated:\t%s\n", formatTime(c.UpdatedAt, dateFormat))
	return tw.Flush()
}

// printDocuments writes documents as an aligned table.
func printDocuments(w io.Writer, docs []store.Document, dateFormat string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUPDATED\tSIZE")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.ID, d.Name, formatTime(d.UpdatedAt, dateFormat), strconv.Itoa(len(d.Content))+" B")
	}
	return tw.Flush()
}

// preview shortens s to one line of at most maxPreviewLength runes.
func preview(s string) string {
	s, _, cut := strings.Cut(s, "\n")
	r := []rune(s)
	if len(r) > maxPreviewLength {
		return string(r[:maxPreviewLength-3]) + "..."
	}
	if cut {
		return s + "..."
	}
	return s
}
