package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// Seed collection created in an empty database.
const (
	DefaultCollectionName        = "Default Collection"
	DefaultCollectionDescription = "Your default collection of documents"
)

// DefaultFileName is the database file name inside the data directory.
const DefaultFileName = "mdnotes.db"

// busyTimeoutMillis is how long a connection waits on a locked database.
const busyTimeoutMillis = 10_000

var schema = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection_id)`,
}

// Store is the collections and documents database.
// A Store is safe for concurrent use.
type Store struct {
	db     *bun.DB
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open opens or creates the database at path, creating its directory, the
// schema and the default collection as needed.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}

	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", ErrOpen, err)
	}

	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	sqlDB.SetMaxOpenConns(1)

	s.db = bun.NewDB(sqlDB, sqlitedialect.New())

	if err := s.init(ctx); err != nil {
		_ = s.db.Close()
		return nil, err
	}

	s.logger.Debug("store opened", slog.String("path", path))
	return s, nil
}

// dsn builds the driver connection string. Pragmas in the DSN are applied to
// every new connection, not only the first.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + filepath.ToSlash(path) + "?" + q.Encode()
}

func (s *Store) init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: applying schema: %v", ErrOpen, err)
		}
	}

	count, err := s.db.NewSelect().Model((*Collection)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: counting collections: %v", ErrOpen, err)
	}
	if count > 0 {
		return nil
	}

	desc := DefaultCollectionDescription
	if _, err := s.CreateCollection(ctx, CollectionInput{Name: DefaultCollectionName, Description: &desc}); err != nil {
		return fmt.Errorf("%w: seeding default collection: %v", ErrOpen, err)
	}
	s.logger.Info("created default collection", slog.String("path", s.path))
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// timestamp returns the current time in UTC, the form stored in the database.
func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// invalid wraps a validation failure.
func invalid(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, verrs)
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error, kind string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
	}
	return fmt.Errorf("loading %s %d: %w", kind, id, err)
}
