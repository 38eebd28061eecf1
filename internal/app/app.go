// Package app is the command surface of mdnotes: every operation the CLI and
// the HTTP API expose, over one store and one exporter.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	mdnotes "github.com/alnah/go-mdnotes"
	"github.com/alnah/go-mdnotes/internal/fileutil"
	"github.com/alnah/go-mdnotes/internal/store"
)

// ErrDocumentNotFound reports an unknown document id.
// Its message reads "document N not found" once wrapped.
var ErrDocumentNotFound = errors.New("not found")

// Output file permissions.
const outputPerm = 0o644

// Exporter is the export pipeline used by App. *mdnotes.Exporter implements it.
type Exporter interface {
	mdnotes.DocumentExporter
	PDFAvailable() bool
}

// Compile-time interface check.
var _ Exporter = (*mdnotes.Exporter)(nil)

// App runs commands against a store and an exporter.
// An App is safe for concurrent use.
type App struct {
	store    *store.Store
	exporter Exporter
	workers  int
	logger   *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithWorkers bounds concurrent exports in ExportCollection.
// Zero or less selects mdnotes.ResolvePoolSize(0).
func WithWorkers(n int) Option {
	return func(a *App) {
		a.workers = n
	}
}

// New creates an App.
func New(st *store.Store, exporter Exporter, opts ...Option) *App {
	a := &App{store: st, exporter: exporter}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.workers = mdnotes.ResolvePoolSize(a.workers)
	return a
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

// GetCollections lists every collection, newest first.
func (a *App) GetCollections(ctx context.Context) ([]store.Collection, error) {
	return a.store.ListCollections(ctx)
}

// GetCollection returns the collection with id, or nil when it does not exist.
func (a *App) GetCollection(ctx context.Context, id int64) (*store.Collection, error) {
	c, err := a.store.GetCollection(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCollection creates a collection. description may be nil.
func (a *App) CreateCollection(ctx context.Context, name string, description *string) (store.Collection, error) {
	return a.store.CreateCollection(ctx, store.CollectionInput{Name: name, Description: description})
}

// UpdateCollection replaces the name and description of collection id.
func (a *App) UpdateCollection(ctx context.Context, id int64, name string, description *string) (store.Collection, error) {
	return a.store.UpdateCollection(ctx, id, store.CollectionInput{Name: name, Description: description})
}

// DeleteCollection deletes collection id and its documents. Reports whether
// it existed.
func (a *App) DeleteCollection(ctx context.Context, id int64) (bool, error) {
	return a.store.DeleteCollection(ctx, id)
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// GetDocumentsByCollection lists the documents of a collection, newest first.
func (a *App) GetDocumentsByCollection(ctx context.Context, collectionID int64) ([]store.Document, error) {
	return a.store.ListDocuments(ctx, collectionID)
}

// GetDocument returns the document with id, or nil when it does not exist.
func (a *App) GetDocument(ctx context.Context, id int64) (*store.Document, error) {
	d, err := a.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDocument creates a document in collectionID.
func (a *App) CreateDocument(ctx context.Context, collectionID int64, name, content string) (store.Document, error) {
	return a.store.CreateDocument(ctx, store.DocumentInput{CollectionID: collectionID, Name: name, Content: content})
}

// UpdateDocument replaces the name and content of document id.
func (a *App) UpdateDocument(ctx context.Context, id int64, name, content string) (store.Document, error) {
	return a.store.UpdateDocument(ctx, id, store.DocumentUpdate{Name: name, Content: content})
}

// DeleteDocument deletes document id and reports whether it existed.
func (a *App) DeleteDocument(ctx context.Context, id int64) (bool, error) {
	return a.store.DeleteDocument(ctx, id)
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// CheckPDFAvailable reports whether PDF export can run on this host.
func (a *App) CheckPDFAvailable() bool {
	return a.exporter.PDFAvailable()
}

// ExportDocument exports document id as formatToken ("html" or "pdf", any
// case) and writes the bytes to outputPath.
//
// Steps run in order and stop at the first failure: fetch the document, parse
// the format, export, write. No file is touched unless the export succeeded.
// The output path is used as given, whatever its extension.
func (a *App) ExportDocument(ctx context.Context, id int64, formatToken, outputPath string) error {
	start := time.Now()

	doc, err := a.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return documentNotFound(id)
	}
	if err != nil {
		return err
	}

	format, err := mdnotes.ParseExportFormat(formatToken)
	if err != nil {
		return err
	}

	data, err := a.exporter.Export(ctx, doc.Content, format)
	if err != nil {
		return err
	}

	if err := writeOutput(outputPath, data); err != nil {
		return err
	}

	attrs := []any{
		slog.Int64("document", id),
		slog.String("format", format.String()),
		slog.String("path", outputPath),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)),
	}
	if format == mdnotes.FormatPDF {
		if info, err := mdnotes.InspectPDF(data); err == nil {
			attrs = append(attrs, slog.Int("pages", info.Pages))
		}
	}
	a.logger.Info("exported document", attrs...)
	return nil
}

// ExportedFile is the outcome of one document in ExportCollection.
type ExportedFile struct {
	DocumentID int64
	Name       string
	Path       string
	Bytes      int
	Err        error
}

// ExportCollection exports every document of collectionID into outputDir,
// running up to the configured number of exports at once. Files are named
// after their documents with the format's extension; clashing names get a
// numeric suffix. A failed document does not stop the others: the returned
// error joins every failure and the slice reports each document in listing
// order.
func (a *App) ExportCollection(ctx context.Context, collectionID int64, formatToken, outputDir string) ([]ExportedFile, error) {
	format, err := mdnotes.ParseExportFormat(formatToken)
	if err != nil {
		return nil, err
	}

	if _, err := a.store.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}
	docs, err := a.store.ListDocuments(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", mdnotes.ErrWriteOutput, err)
	}

	names := make(map[string]int, len(docs))
	files := make([]ExportedFile, len(docs))
	jobs := make([]mdnotes.ExportJob, len(docs))
	for i, d := range docs {
		name := uniqueName(names, fileutil.SafeFileName(d.Name, "document-"+strconv.FormatInt(d.ID, 10)))
		files[i] = ExportedFile{
			DocumentID: d.ID,
			Name:       d.Name,
			Path:       filepath.Join(outputDir, name+"."+format.Extension()),
		}
		jobs[i] = mdnotes.ExportJob{Name: name, Markdown: d.Content, Format: format}
	}

	pool := mdnotes.NewExporterPool(a.workers, a.exporter)
	defer pool.Close()

	start := time.Now()
	var errs []error
	for _, r := range pool.ExportAll(ctx, jobs) {
		f := &files[r.Index]
		if r.Err == nil {
			r.Err = writeOutput(f.Path, r.Data)
		}
		if r.Err != nil {
			f.Err = r.Err
			errs = append(errs, fmt.Errorf("document %d: %w", f.DocumentID, r.Err))
			continue
		}
		f.Bytes = len(r.Data)
	}

	a.logger.Info("exported collection",
		slog.Int64("collection", collectionID),
		slog.String("format", format.String()),
		slog.Int("documents", len(docs)),
		slog.Int("failed", len(errs)),
		slog.Int("workers", pool.Size()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return files, errors.Join(errs...)
}

// Workers returns the export concurrency bound.
func (a *App) Workers() int {
	return a.workers
}

func documentNotFound(id int64) error {
	return fmt.Errorf("document %d %w", id, ErrDocumentNotFound)
}

// writeOutput writes data atomically. Failures wrap mdnotes.ErrWriteOutput.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, outputPerm); err != nil {
		return fmt.Errorf("%w: %w", mdnotes.ErrWriteOutput, err)
	}
	return nil
}

// uniqueName returns name, or name-N when name was already handed out.
func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	n := seen[name]
	if n == 1 {
		return name
	}
	for {
		candidate := name + "-" + strconv.Itoa(n)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
		n++
	}
}
