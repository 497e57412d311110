// Package memory provides in-memory storage implementations.
//
// The delivery ledger here backs offline runs, so that replayed snapshots
// never reach the persistent ledger.
package memory
