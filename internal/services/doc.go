// Package services defines shared utilities consumed by the worker session,
// the bridge and the external engine adapter.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, handler IDs and worker states
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper so infrastructure
//     failures carry a consistent classification.
//
// Request-level failures that end up in front of a user (invalid colors,
// engine messages) are plain strings by the time they leave the worker; the
// markers here are for the plumbing around them.
package services
