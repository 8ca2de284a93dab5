//go:build !cgo_sqlite

package source

// Default build: pure Go SQLite driver, no C compiler needed.
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"
