package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// stepClock returns a time source advancing one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", DefaultFileName), WithClock(stepClock()))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// TestOpen - Schema and seed
// ---------------------------------------------------------------------------

func TestOpen_SeedsDefaultCollection(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	cols, err := s.ListCollections(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 1 {
		t.Fatalf("got %d collections, want 1", len(cols))
	}
	if cols[0].Name != DefaultCollectionName || cols[0].Description == nil || *cols[0].Description != DefaultCollectionDescription {
		t.Errorf("seed = %+v", cols[0])
	}
}

func TestOpen_ReopenDoesNotReseed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCollection(ctx, CollectionInput{Name: "Work"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	cols, err := s.ListCollections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 {
		t.Errorf("got %d collections after reopen, want 2", len(cols))
	}
}

func TestOpen_SeedsAgainWhenEmptied(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	cols, _ := s.ListCollections(ctx)
	if ok, err := s.DeleteCollection(ctx, cols[0].ID); err != nil || !ok {
		t.Fatalf("DeleteCollection() = %v, %v", ok, err)
	}
	_ = s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	cols, _ = s.ListCollections(ctx)
	if len(cols) != 1 || cols[0].Name != DefaultCollectionName {
		t.Errorf("expected a fresh default collection, got %+v", cols)
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); !errors.Is(err, ErrOpen) {
		t.Errorf("empty path error = %v", err)
	}

	file := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(context.Background(), filepath.Join(file, "sub", "db")); !errors.Is(err, ErrOpen) {
		t.Errorf("file as directory error = %v", err)
	}
}

func TestDSN(t *testing.T) {
	t.Parallel()

	got := dsn("/tmp/a b/notes.db")
	for _, want := range []string{"file:/tmp/a b/notes.db?", "foreign_keys%281%29", "busy_timeout%2810000%29"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn = %q, missing %q", got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestCollections - CRUD
// ---------------------------------------------------------------------------

func TestCollections_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	c, err := s.CreateCollection(ctx, CollectionInput{Name: "  Work  ", Description: ptr("  ")})
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if c.ID == 0 || c.Name != "Work" || c.Description != nil {
		t.Errorf("created = %+v", c)
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Error("new record should have equal timestamps")
	}

	got, err := s.GetCollection(ctx, c.ID)
	if err != nil || got.Name != "Work" {
		t.Fatalf("GetCollection() = %+v, %v", got, err)
	}

	upd, err := s.UpdateCollection(ctx, c.ID, CollectionInput{Name: "Office", Description: ptr("daily notes")})
	if err != nil {
		t.Fatalf("UpdateCollection() error = %v", err)
	}
	if upd.Name != "Office" || upd.Description == nil || *upd.Description != "daily notes" {
		t.Errorf("updated = %+v", upd)
	}
	if !upd.UpdatedAt.After(c.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v <= %v", upd.UpdatedAt, c.UpdatedAt)
	}
	if !upd.CreatedAt.Equal(c.CreatedAt) {
		t.Error("created_at changed on update")
	}

	cols, err := s.ListCollections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 || cols[0].ID != c.ID {
		t.Errorf("newest collection should come first, got %+v", cols)
	}

	ok, err := s.DeleteCollection(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteCollection() = %v, %v", ok, err)
	}
	ok, err = s.DeleteCollection(ctx, c.ID)
	if err != nil || ok {
		t.Errorf("second DeleteCollection() = %v, %v, want false", ok, err)
	}
	if _, err := s.GetCollection(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCollection(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestCollections_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	tests := []struct {
		name string
		in   CollectionInput
	}{
		{name: "empty name", in: CollectionInput{Name: ""}},
		{name: "blank name", in: CollectionInput{Name: "   "}},
		{name: "long name", in: CollectionInput{Name: strings.Repeat("n", MaxNameLength+1)}},
		{name: "long description", in: CollectionInput{Name: "ok", Description: ptr(strings.Repeat("d", MaxDescriptionLength+1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := s.CreateCollection(ctx, tt.in); !errors.Is(err, ErrInvalid) {
				t.Errorf("CreateCollection() error = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := s.CreateCollection(ctx, CollectionInput{Name: strings.Repeat("é", MaxNameLength)}); err != nil {
		t.Errorf("name of %d runes rejected: %v", MaxNameLength, err)
	}
}

func TestUpdateCollection_NotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, err := s.UpdateCollection(context.Background(), 9999, CollectionInput{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// TestDocuments - CRUD and cascade
// ---------------------------------------------------------------------------

func TestDocuments_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	col, err := s.CreateCollection(ctx, CollectionInput{Name: "Notes"})
	if err != nil {
		t.Fatal(err)
	}

	first, err := s.CreateDocument(ctx, DocumentInput{CollectionID: col.ID, Name: "First", Content: "# One\n"})
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	second, err := s.CreateDocument(ctx, DocumentInput{CollectionID: col.ID, Name: " Second ", Content: ""})
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if second.Name != "Second" || second.CollectionID != col.ID {
		t.Errorf("created = %+v", second)
	}

	docs, err := s.ListDocuments(ctx, col.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != second.ID || docs[1].ID != first.ID {
		t.Errorf("documents not newest first: %+v", docs)
	}

	upd, err := s.UpdateDocument(ctx, first.ID, DocumentUpdate{Name: "First v2", Content: "# One\n\nmore"})
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	if upd.Content != "# One\n\nmore" || upd.CollectionID != col.ID || !upd.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated = %+v", upd)
	}

	got, err := s.GetDocument(ctx, first.ID)
	if err != nil || got.Name != "First v2" {
		t.Errorf("GetDocument() = %+v, %v", got, err)
	}

	if ok, err := s.DeleteDocument(ctx, second.ID); err != nil || !ok {
		t.Errorf("DeleteDocument() = %v, %v", ok, err)
	}
	if ok, _ := s.DeleteDocument(ctx, second.ID); ok {
		t.Error("second delete reported existing row")
	}
}

func TestDocuments_CascadeDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	col, _ := s.CreateCollection(ctx, CollectionInput{Name: "Temp"})
	doc, err := s.CreateDocument(ctx, DocumentInput{CollectionID: col.ID, Name: "gone", Content: "x"})
	if err != nil {
		t.Fatal(err)
	}

	if ok, err := s.DeleteCollection(ctx, col.ID); err != nil || !ok {
		t.Fatalf("DeleteCollection() = %v, %v", ok, err)
	}
	if _, err := s.GetDocument(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("document survived its collection: %v", err)
	}
	docs, err := s.ListDocuments(ctx, col.ID)
	if err != nil || len(docs) != 0 {
		t.Errorf("ListDocuments() = %v, %v", docs, err)
	}
}

func TestDocuments_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	cols, _ := s.ListCollections(ctx)
	colID := cols[0].ID

	tests := []struct {
		name string
		in   DocumentInput
	}{
		{name: "no collection", in: DocumentInput{Name: "x"}},
		{name: "unknown collection", in: DocumentInput{CollectionID: 4242, Name: "x"}},
		{name: "blank name", in: DocumentInput{CollectionID: colID, Name: " "}},
		{name: "long name", in: DocumentInput{CollectionID: colID, Name: strings.Repeat("n", MaxNameLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := s.CreateDocument(ctx, tt.in); !errors.Is(err, ErrInvalid) {
				t.Errorf("CreateDocument() error = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := s.UpdateDocument(ctx, 4242, DocumentUpdate{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDocument(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateDocument(ctx, 4242, DocumentUpdate{Name: ""}); !errors.Is(err, ErrInvalid) {
		t.Errorf("UpdateDocument(blank) error = %v, want ErrInvalid", err)
	}
}

func TestDocuments_ContentRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	cols, _ := s.ListCollections(ctx)

	content := "# Title\n\nSome text.\n\n```mermaid\ngraph TD; A-->B;\n```\n\n日本語 ==mark== 'quotes' \"double\"\r\n"
	doc, err := s.CreateDocument(ctx, DocumentInput{CollectionID: cols[0].ID, Name: "rt", Content: content})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != content {
		t.Errorf("content changed:\n got %q\nwant %q", got.Content, content)
	}
}
