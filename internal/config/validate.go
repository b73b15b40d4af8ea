package config

import (
	"errors"
	"fmt"
	"net"

	"chessgif/internal/colors"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateBoard(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.Binary == "" {
		return errors.New("engine.binary must be set")
	}
	if c.Engine.TimeoutSeconds < 0 {
		return errors.New("engine.timeout_seconds must be zero (unbounded) or positive")
	}
	return nil
}

func (c *Config) validateBoard() error {
	if _, err := colors.LookupTheme(c.Board.Theme); err != nil {
		return fmt.Errorf("board.theme: %w (%q)", err, c.Board.Theme)
	}
	return nil
}

func (c *Config) validateWorker() error {
	switch c.Worker.OverlapPolicy {
	case "reject", "queue":
		return nil
	default:
		return fmt.Errorf("worker.overlap_policy: unsupported value %q (want reject or queue)", c.Worker.OverlapPolicy)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// BoardColors returns the configured default colors, resolving the theme when
// no explicit pair is set.
func (c *Config) BoardColors() (string, string) {
	if c.Board.DarkColor != "" && c.Board.LightColor != "" {
		return c.Board.DarkColor, c.Board.LightColor
	}
	theme, err := colors.LookupTheme(c.Board.Theme)
	if err != nil {
		theme = colors.DefaultTheme()
	}
	return theme.Dark, theme.Light
}
