package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"chessgif/internal/config"
	"chessgif/internal/engine"
	"chessgif/internal/history"
	"chessgif/internal/logging"
	"chessgif/internal/worker"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openHistory returns nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryPath(), cfg.History.Retention)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// newWorker builds an unstarted session around the configured renderer.
func (c *commandContext) newWorker(recorder worker.Recorder) (*worker.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	cli := engine.NewCLI(engine.WithBinary(cfg.Engine.Binary))
	if err := cli.Check(); err != nil {
		return nil, err
	}

	opts := []worker.Option{
		worker.WithDefaults(engineDefaults(cfg)),
		worker.WithTimeout(cfg.EngineTimeout()),
	}
	if recorder != nil {
		opts = append(opts, worker.WithRecorder(recorder))
	}
	return worker.NewSession(cli, logger, opts...), nil
}

func engineDefaults(cfg *config.Config) engine.Defaults {
	return engine.Defaults{
		SquareSize:      cfg.Engine.SquareSize,
		FrameDelay:      millis(cfg.Engine.FrameDelayMS),
		FirstFrameDelay: millis(cfg.Engine.FirstFrameDelayMS),
		LastFrameDelay:  millis(cfg.Engine.LastFrameDelayMS),
		Flip:            cfg.Engine.Flip,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
