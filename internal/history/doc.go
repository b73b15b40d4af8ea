// Package history persists one row per finished conversion in SQLite.
//
// The worker records the outcome after it has delivered the response, so a
// failing or slow database never changes what the caller sees. Rows are kept
// up to a configurable retention count and listed newest first for the CLI
// and HTTP status views.
package history
