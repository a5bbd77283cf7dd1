// Package sqlite implements a SQLite-backed storage.Executor on
// modernc.org/sqlite.
package sqlite

// Config holds SQLite executor configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:bar.db?_pragma=foreign_keys(1)"
	//   "bar.db" (interpreted by the driver)
	//   ":memory:"
	DSN string
}
