// Package history persists completed analysis runs in a local SQLite
// database for later review and export.
package history
