// Package ingest reads PGN files into a surface's notation.
//
// Select starts a read in the background; a later Select supersedes it and
// only the latest selection publishes into the Mirror. Watcher re-selects a
// file whenever it is written.
package ingest
