package mdnotes

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestResolvePoolSize
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(3); got != 3 {
		t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
	}

	want := runtime.GOMAXPROCS(0) / cpuDivisor
	want = max(MinPoolSize, min(want, MaxPoolSize))
	if got := ResolvePoolSize(0); got != want {
		t.Errorf("ResolvePoolSize(0) = %d, want %d", got, want)
	}
	if got := ResolvePoolSize(-1); got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(-1) = %d, out of [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
}

// ---------------------------------------------------------------------------
// TestExporterPool - Bounded concurrency
// ---------------------------------------------------------------------------

func TestExporterPool_ExportAll(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{delay: 20 * time.Millisecond}
	pool := NewExporterPool(2, newTestExporter(t, mock))
	defer pool.Close()

	jobs := make([]ExportJob, 6)
	for i := range jobs {
		jobs[i] = ExportJob{Name: fmt.Sprintf("doc-%d", i), Markdown: fmt.Sprintf("# Doc %d\n", i), Format: FormatPDF}
	}
	jobs[4].Format = FormatHTML
	jobs[5].Format = ExportFormat(0)

	results := pool.ExportAll(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}

	for i, r := range results {
		if r.Index != i || r.Job.Name != jobs[i].Name {
			t.Errorf("result %d out of order: %+v", i, r.Job)
		}
	}
	for _, r := range results[:4] {
		if r.Err != nil || string(r.Data) != "%PDF-mock" {
			t.Errorf("%s: data=%q err=%v", r.Job.Name, r.Data, r.Err)
		}
	}
	if r := results[4]; r.Err != nil || !strings.HasPrefix(string(r.Data), "<!DOCTYPE html>") {
		t.Errorf("html job: err=%v", r.Err)
	}
	if !errors.Is(results[5].Err, ErrUnsupportedFormat) {
		t.Errorf("invalid job error = %v", results[5].Err)
	}

	if got := mock.maxActive.Load(); got > 2 {
		t.Errorf("max concurrent renders = %d, want <= 2", got)
	}
}

func TestExporterPool_Close(t *testing.T) {
	t.Parallel()

	pool := NewExporterPool(1, newTestExporter(t, &mockRenderer{}))
	if err := pool.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Export(context.Background(), "# x", FormatHTML); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Export after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestExporterPool_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	pool := NewExporterPool(0, newTestExporter(t, &mockRenderer{}))
	if pool.Size() != MinPoolSize {
		t.Fatalf("Size() = %d, want %d", pool.Size(), MinPoolSize)
	}
	if err := pool.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer pool.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire on full pool error = %v, want DeadlineExceeded", err)
	}
}
