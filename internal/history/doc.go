// Package history persists completed import and transfer runs in SQLite.
package history
