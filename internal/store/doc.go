// Package store persists collections and the markdown documents they hold in
// a local SQLite database.
//
// A Store owns one database file. Deleting a collection deletes its documents
// through the foreign key; foreign keys are enabled on every connection.
// Records are validated before every write and re-read after it, so callers
// always see what was stored.
package store
