package mdnotes

import (
	"context"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent browser processes (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// DocumentExporter runs one export. *Exporter implements it.
type DocumentExporter interface {
	Export(ctx context.Context, markdown string, format ExportFormat) ([]byte, error)
}

// Compile-time interface check.
var _ DocumentExporter = (*Exporter)(nil)

// ExportJob is one document to export.
type ExportJob struct {
	Name     string
	Markdown string
	Format   ExportFormat
}

// ExportResult is the outcome of one ExportJob.
type ExportResult struct {
	Index int // position in the submitted jobs
	Job   ExportJob
	Data  []byte
	Err   error
}

// ExporterPool bounds the number of exports running at once. Each PDF export
// still launches its own browser; the pool only limits how many run together.
type ExporterPool struct {
	exporter DocumentExporter
	sem      chan struct{}
	mu       sync.Mutex
	closed   bool
}

// NewExporterPool creates a pool running at most n exports through exporter.
func NewExporterPool(n int, exporter DocumentExporter) *ExporterPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &ExporterPool{
		exporter: exporter,
		sem:      make(chan struct{}, n),
	}
}

// Acquire blocks until a slot is free or ctx is done.
// Returns ErrPoolClosed after Close.
func (p *ExporterPool) Acquire(ctx context.Context) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPoolClosed
	}

	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (p *ExporterPool) Release() {
	<-p.sem
}

// Export runs one export inside a pool slot.
func (p *ExporterPool) Export(ctx context.Context, markdown string, format ExportFormat) ([]byte, error) {
	if err := p.Acquire(ctx); err != nil {
		return nil, err
	}
	defer p.Release()
	return p.exporter.Export(ctx, markdown, format)
}

// ExportAll exports every job with at most Size() running at once and
// returns results in job order. A failed job does not stop the others.
func (p *ExporterPool) ExportAll(ctx context.Context, jobs []ExportJob) []ExportResult {
	results := make([]ExportResult, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := p.Export(ctx, job.Markdown, job.Format)
			results[i] = ExportResult{Index: i, Job: job, Data: data, Err: err}
		}()
	}
	wg.Wait()

	return results
}

// Close rejects further exports. Running exports finish normally.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return cap(p.sem)
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
