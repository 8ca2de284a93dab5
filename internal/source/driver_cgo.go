//go:build cgo_sqlite

package source

// Built with the cgo_sqlite tag: the C driver, faster on large catalogs.
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriver = "sqlite3"
