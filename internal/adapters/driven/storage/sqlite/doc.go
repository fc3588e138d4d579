// Package sqlite provides the SQLite-backed bookkeeping for shelf.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database file holds:
//
//   - UploadLedger: published images keyed by publisher, canonical name and content hash
//   - RunStore: the summary of every pipeline run
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.shelf/shelf.db
package sqlite
