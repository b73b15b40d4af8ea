package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"chessgif/internal/services"
)

var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the c2g command-line renderer. Notation is written to stdin and
// the GIF is read from stdout.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "c2g"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the executable the client launches.
func (c *CLI) Binary() string {
	return c.binary
}

// Check verifies the renderer can be found on PATH.
func (c *CLI) Check() error {
	if _, err := lookPath(c.binary); err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "lookup", fmt.Sprintf("renderer %q not found", c.binary), err)
	}
	return nil
}

// Convert launches one renderer process and returns its stdout.
func (c *CLI) Convert(ctx context.Context, notation string, cfg Config) ([]byte, error) {
	if cfg.Output != OutputBuffer {
		return nil, fmt.Errorf("unsupported output mode %s", cfg.Output)
	}
	if cfg.Colors.Dark.IsZero() || cfg.Colors.Light.IsZero() {
		return nil, errors.New("validated colors required")
	}

	cmd := commandContext(ctx, c.binary, buildArgs(cfg)...) //nolint:gosec
	cmd.Stdin = strings.NewReader(notation)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = fmt.Sprintf("%s: %v", c.binary, err)
		}
		return nil, &Error{Message: message, Err: err}
	}
	return stdout.Bytes(), nil
}

func buildArgs(cfg Config) []string {
	d := cfg.Defaults
	args := []string{
		"--dark", cfg.Colors.Dark.String(),
		"--light", cfg.Colors.Light.String(),
	}
	if d.SquareSize > 0 {
		args = append(args, "--size", strconv.Itoa(d.SquareSize))
	}
	if d.FrameDelay > 0 {
		args = append(args, "--delay", strconv.FormatInt(d.FrameDelay.Milliseconds(), 10))
	}
	if d.FirstFrameDelay > 0 {
		args = append(args, "--first-frame-delay", strconv.FormatInt(d.FirstFrameDelay.Milliseconds(), 10))
	}
	if d.LastFrameDelay > 0 {
		args = append(args, "--last-frame-delay", strconv.FormatInt(d.LastFrameDelay.Milliseconds(), 10))
	}
	if d.Flip {
		args = append(args, "--flip")
	}
	return append(args, "--output", "-")
}

var _ Converter = (*CLI)(nil)
