// Package protocol defines the messages exchanged between a bridge and the
// conversion worker.
//
// A Request carries the notation and the two raw color strings exactly as the
// user entered them. A Response is a tagged union: either the rendered bytes
// or an error message, never both and never neither.
package protocol
