package engine

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

var registerOnce sync.Once
var registerErr error

// Open opens a SQLite database using the modernc.org/sqlite driver, with the
// distance functions registered.
//
// For file-based databases, pass a path like "./db.sqlite". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) {
	registerOnce.Do(func() { registerErr = RegisterFunctions() })
	if registerErr != nil {
		return nil, registerErr
	}
	return sql.Open("sqlite", dsn)
}
