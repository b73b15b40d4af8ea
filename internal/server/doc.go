// Package server exposes the conversion surface over HTTP.
//
// Each API session is one interactive surface: a Mirror with its bound text
// control, a Bridge registered with the shared worker session, and an
// Ingestor for uploaded PGN files. All sessions share one worker, so
// conversions across sessions run one at a time in submission order.
//
// Only one server may run per data directory; Start takes a lock file next to
// the history database.
package server
