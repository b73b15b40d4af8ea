package engine

import (
	"context"
	"time"

	"chessgif/internal/colors"
	"chessgif/internal/services"
)

// OutputMode selects where the renderer delivers the GIF.
type OutputMode int

const (
	// OutputBuffer returns raw bytes to the caller instead of writing a file.
	OutputBuffer OutputMode = iota
)

func (m OutputMode) String() string {
	switch m {
	case OutputBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// Defaults are the fixed rendering settings shared by every request.
type Defaults struct {
	SquareSize      int
	FrameDelay      time.Duration
	FirstFrameDelay time.Duration
	LastFrameDelay  time.Duration
	Flip            bool
}

// Config is the per-request renderer configuration. Build a new one for each
// request with NewConfig.
type Config struct {
	Colors   colors.Pair
	Output   OutputMode
	Defaults Defaults
}

// NewConfig combines a validated color pair with the fixed defaults.
func NewConfig(pair colors.Pair, defaults Defaults) Config {
	return Config{
		Colors:   pair,
		Output:   OutputBuffer,
		Defaults: defaults,
	}
}

// Converter renders notation into GIF bytes.
type Converter interface {
	Convert(ctx context.Context, notation string, cfg Config) ([]byte, error)
}

// Func adapts a plain function to Converter.
type Func func(ctx context.Context, notation string, cfg Config) ([]byte, error)

// Convert calls f.
func (f Func) Convert(ctx context.Context, notation string, cfg Config) ([]byte, error) {
	return f(ctx, notation, cfg)
}

// Error carries a renderer failure. Error returns the renderer's own message.
type Error struct {
	Message string
	Err     error
}

// NewError builds an engine error with only a message.
func NewError(message string) *Error {
	return &Error{Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the external tool marker and the underlying process error.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrExternalTool}
	}
	return []error{services.ErrExternalTool, e.Err}
}
