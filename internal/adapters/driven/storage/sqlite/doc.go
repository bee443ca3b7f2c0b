// Package sqlite provides a SQLite-backed descriptor store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Descriptor payloads are kept as BLOBs
// keyed by locator, so the store doubles as a DescriptorSource for the
// recognition service once populated with `arvision descriptors import`.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.arvision/data/descriptors.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
