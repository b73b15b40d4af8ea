// Package engine wraps the external c2g renderer that turns chess notation
// into animated GIF bytes.
//
// It exposes a Converter interface, a CLI implementation that launches one
// fresh renderer process per conversion, and Func for plain functions. Engine
// failures are surfaced as *Error values whose text is exactly what the
// renderer reported; nothing here parses or retries them. Tests swap in fakes
// (or the helper-process pattern) to avoid executing the real renderer.
package engine
