// Package file provides the TOML configuration file and a watcher that
// reports when it changes.
package file
