package main

// Notes:
// - The router is exercised through httptest against a real temp store and
//   the fake exporter from main_test.go.
// - We check status codes and the {"error": ...} body shape, not log output.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdnotes "github.com/alnah/go-mdnotes"
	"github.com/alnah/go-mdnotes/internal/app"
	"github.com/alnah/go-mdnotes/internal/store"
)

func newTestServer(t *testing.T, exp *fakeExporter) *httptest.Server {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), store.DefaultFileName))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	srv := httptest.NewServer(newRouter(app.New(st, exp), slog.New(slog.DiscardHandler)))
	t.Cleanup(srv.Close)
	return srv
}

// call sends a JSON request and decodes the JSON response into out (if non-nil).
func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("%s %s: Content-Type = %q", method, path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// ---------------------------------------------------------------------------
// TestAPI_Collections
// ---------------------------------------------------------------------------

func TestAPI_Collections(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeExporter{})

	var list []store.Collection
	if code := call(t, srv, http.MethodGet, "/collections", "", &list); code != http.StatusOK {
		t.Fatalf("GET /collections = %d", code)
	}
	if len(list) != 1 || list[0].Name != store.DefaultCollectionName {
		t.Errorf("seeded list = %+v", list)
	}

	var created store.Collection
	code := call(t, srv, http.MethodPost, "/collections", `{"name":"Work","description":"job"}`, &created)
	if code != http.StatusCreated || created.Name != "Work" {
		t.Fatalf("POST /collections = %d %+v", code, created)
	}

	var updated store.Collection
	path := fmt.Sprintf("/collections/%d", created.ID)
	if code := call(t, srv, http.MethodPut, path, `{"name":"Office"}`, &updated); code != http.StatusOK {
		t.Fatalf("PUT %s = %d", path, code)
	}
	if updated.Name != "Office" || updated.Description != nil {
		t.Errorf("PUT replaces both fields, got %+v", updated)
	}

	var got store.Collection
	if code := call(t, srv, http.MethodGet, path, "", &got); code != http.StatusOK || got.Name != "Office" {
		t.Errorf("GET %s = %d %+v", path, code, got)
	}

	var del map[string]bool
	if code := call(t, srv, http.MethodDelete, path, "", &del); code != http.StatusOK || !del["deleted"] {
		t.Errorf("DELETE %s = %d %v", path, code, del)
	}
	if code := call(t, srv, http.MethodDelete, path, "", &del); code != http.StatusOK || del["deleted"] {
		t.Errorf("second DELETE %s = %d %v, want deleted=false", path, code, del)
	}
}

// ---------------------------------------------------------------------------
// TestAPI_Documents
// ---------------------------------------------------------------------------

func TestAPI_Documents(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeExporter{})

	var doc store.Document
	code := call(t, srv, http.MethodPost, "/documents", `{"collectionId":1,"name":"Plan","content":"# Plan"}`, &doc)
	if code != http.StatusCreated || doc.ID == 0 || doc.CollectionID != 1 {
		t.Fatalf("POST /documents = %d %+v", code, doc)
	}

	var docs []store.Document
	if code := call(t, srv, http.MethodGet, "/collections/1/documents", "", &docs); code != http.StatusOK || len(docs) != 1 {
		t.Errorf("GET /collections/1/documents = %d %+v", code, docs)
	}

	path := fmt.Sprintf("/documents/%d", doc.ID)
	var updated store.Document
	if code := call(t, srv, http.MethodPut, path, `{"name":"Roadmap","content":"# Roadmap"}`, &updated); code != http.StatusOK {
		t.Fatalf("PUT %s = %d", path, code)
	}
	if updated.Name != "Roadmap" || updated.Content != "# Roadmap" {
		t.Errorf("PUT = %+v", updated)
	}

	var got store.Document
	if code := call(t, srv, http.MethodGet, path, "", &got); code != http.StatusOK || got.Content != "# Roadmap" {
		t.Errorf("GET %s = %d %+v", path, code, got)
	}

	var del map[string]bool
	if code := call(t, srv, http.MethodDelete, path, "", &del); code != http.StatusOK || !del["deleted"] {
		t.Errorf("DELETE %s = %d %v", path, code, del)
	}

	var errBody map[string]string
	if code := call(t, srv, http.MethodGet, path, "", &errBody); code != http.StatusNotFound {
		t.Errorf("GET deleted = %d, want 404", code)
	}
	if want := fmt.Sprintf("document %d not found", doc.ID); errBody["error"] != want {
		t.Errorf("error = %q, want %q", errBody["error"], want)
	}
}

// ---------------------------------------------------------------------------
// TestAPI_Export
// ---------------------------------------------------------------------------

func TestAPI_Export(t *testing.T) {
	t.Parallel()

	exp := &fakeExporter{available: true}
	srv := newTestServer(t, exp)
	dir := t.TempDir()

	call(t, srv, http.MethodPost, "/documents", `{"collectionId":1,"name":"Plan","content":"# Plan"}`, nil)

	var avail map[string]bool
	if code := call(t, srv, http.MethodGet, "/pdf/available", "", &avail); code != http.StatusOK || !avail["available"] {
		t.Errorf("GET /pdf/available = %d %v", code, avail)
	}

	out := filepath.Join(dir, "plan.html")
	body := fmt.Sprintf(`{"format":"html","outputPath":%q}`, out)
	var res map[string]string
	if code := call(t, srv, http.MethodPost, "/documents/1/export", body, &res); code != http.StatusOK {
		t.Fatalf("export = %d %v", code, res)
	}
	if res["outputPath"] != out {
		t.Errorf("outputPath = %q", res["outputPath"])
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "html:# Plan" {
		t.Errorf("exported file = %q, %v", data, err)
	}
}

func TestAPI_ExportEngineUnavailable(t *testing.T) {
	t.Parallel()

	exp := &fakeExporter{
		failOn:   "#",
		failWith: fmt.Errorf("%w: install Chromium", mdnotes.ErrEngineUnavailable),
	}
	srv := newTestServer(t, exp)
	call(t, srv, http.MethodPost, "/documents", `{"collectionId":1,"name":"Plan","content":"# Plan"}`, nil)

	body := fmt.Sprintf(`{"format":"pdf","outputPath":%q}`, filepath.Join(t.TempDir(), "p.pdf"))
	var errBody map[string]string
	if code := call(t, srv, http.MethodPost, "/documents/1/export", body, &errBody); code != http.StatusServiceUnavailable {
		t.Errorf("export = %d, want 503", code)
	}
	if !strings.Contains(errBody["error"], "install Chromium") {
		t.Errorf("error = %q", errBody["error"])
	}
}

// ---------------------------------------------------------------------------
// TestAPI_Errors - Status mapping and error body
// ---------------------------------------------------------------------------

func TestAPI_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeExporter{})
	call(t, srv, http.MethodPost, "/documents", `{"collectionId":1,"name":"Plan","content":"x"}`, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"collection not found", http.MethodGet, "/collections/99", "", http.StatusNotFound, "collection 99"},
		{"update missing collection", http.MethodPut, "/collections/99", `{"name":"x"}`, http.StatusNotFound, "not found"},
		{"invalid id", http.MethodGet, "/collections/abc", "", http.StatusBadRequest, "invalid id"},
		{"malformed JSON", http.MethodPost, "/collections", `{"name":`, http.StatusBadRequest, "invalid JSON body"},
		{"unknown field", http.MethodPost, "/collections", `{"title":"x"}`, http.StatusBadRequest, "invalid JSON body"},
		{"empty name", http.MethodPost, "/collections", `{"name":"  "}`, http.StatusBadRequest, "invalid"},
		{"document in missing collection", http.MethodPost, "/documents", `{"collectionId":99,"name":"x"}`, http.StatusBadRequest, "does not exist"},
		{"export bad format", http.MethodPost, "/documents/1/export", `{"format":"docx","outputPath":"/tmp/x.docx"}`, http.StatusBadRequest, "supported: html, pdf"},
		{"export missing path", http.MethodPost, "/documents/1/export", `{"format":"pdf"}`, http.StatusBadRequest, "outputPath is required"},
		{"export missing document", http.MethodPost, "/documents/77/export", `{"format":"pdf","outputPath":"/tmp/x.pdf"}`, http.StatusNotFound, "document 77 not found"},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, "route not found"},
		{"method not allowed", http.MethodPatch, "/collections", "", http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body map[string]string
			code := call(t, srv, tt.method, tt.path, tt.body, &body)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %v)", code, tt.wantCode, body)
			}
			if !strings.Contains(body["error"], tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", body["error"], tt.wantErr)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", store.ErrInvalid), http.StatusBadRequest},
		{mdnotes.ErrUnsupportedFormat, http.StatusBadRequest},
		{fmt.Errorf("x: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("document 1 %w", app.ErrDocumentNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: no chrome", mdnotes.ErrEngineUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: %w", mdnotes.ErrRender, mdnotes.ErrPageLoad), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestServe - Graceful shutdown
// ---------------------------------------------------------------------------

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		}),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, slog.New(slog.DiscardHandler)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request while serving: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}
