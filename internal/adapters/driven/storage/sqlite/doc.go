// Package sqlite implements the scheduler store and the delivery ledger on
// a single SQLite database.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that needs no
// CGO. The schema is managed through the embedded migrations/ directory.
//
// By default the database lives at ~/.noticesync/data/noticesync.db.
package sqlite
