package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"chessgif/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithOverlapPolicy sets worker.overlap_policy on the test config.
func WithOverlapPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Worker.OverlapPolicy = policy
	}
}

// WithHistory toggles the history database.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithAPIToken requires bearer auth on the HTTP surface.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithStubbedEngine writes a c2g stand-in that echoes "GIF89a" followed by
// stdin, fails with "empty game" on empty input, and prepends it to PATH.
func WithStubbedEngine() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\n" +
			"input=$(cat)\n" +
			"if [ -z \"$input\" ]; then echo 'empty game' >&2; exit 1; fi\n" +
			"printf 'GIF89a%s' \"$input\"\n")
		target := filepath.Join(binDir, "c2g")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub engine: %v", err)
		}
		b.cfg.Engine.Binary = target
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
