// Package worker runs conversion requests against the engine one at a time.
//
// A Session owns a FIFO of submitted requests and a table of response
// handlers. Its single goroutine takes the oldest request, validates the
// colors, calls the engine and hands exactly one protocol.Response to the
// handler that submitted it before looking at the next request:
//
//	Idle → Validating → Converting → Responding → Idle
//
// Every request-level problem (bad colors, engine errors, an engine that
// returns nothing, an engine panic, a configured timeout, shutdown) becomes a
// Failure response; none of them stop the session. Handlers run on the worker
// goroutine and must return quickly.
package worker
