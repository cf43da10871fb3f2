// Package sqlite provides SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database connection serves:
//
//   - HistoryStore: answered questions with their tools, sources and stop reason
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each .up.sql file records its own version in
// schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.tabula/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
