package config

import (
	"fmt"
	"strings"

	"chessgif/internal/colors"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	if err := c.normalizeBoard(); err != nil {
		return err
	}
	c.normalizeWorker()
	c.normalizeIngest()
	c.normalizeHistory()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	if c.Engine.SquareSize <= 0 {
		c.Engine.SquareSize = defaultSquareSize
	}
	if c.Engine.FrameDelayMS <= 0 {
		c.Engine.FrameDelayMS = defaultFrameDelayMS
	}
	if c.Engine.FirstFrameDelayMS <= 0 {
		c.Engine.FirstFrameDelayMS = defaultFirstFrameDelayMS
	}
	if c.Engine.LastFrameDelayMS <= 0 {
		c.Engine.LastFrameDelayMS = defaultLastFrameDelayMS
	}
}

func (c *Config) normalizeBoard() error {
	c.Board.Theme = strings.ToLower(strings.TrimSpace(c.Board.Theme))
	if c.Board.Theme == "" {
		c.Board.Theme = defaultBoardTheme
	}
	dark := strings.TrimSpace(c.Board.DarkColor)
	light := strings.TrimSpace(c.Board.LightColor)
	if dark == "" && light == "" {
		c.Board.DarkColor = ""
		c.Board.LightColor = ""
		return nil
	}
	if dark == "" || light == "" {
		return fmt.Errorf("board: dark_color and light_color must be set together")
	}
	pair, err := colors.Validate(dark, light)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	c.Board.DarkColor = pair.Dark.String()
	c.Board.LightColor = pair.Light.String()
	return nil
}

func (c *Config) normalizeWorker() {
	c.Worker.OverlapPolicy = strings.ToLower(strings.TrimSpace(c.Worker.OverlapPolicy))
	if c.Worker.OverlapPolicy == "" {
		c.Worker.OverlapPolicy = defaultOverlapPolicy
	}
}

func (c *Config) normalizeIngest() {
	if c.Ingest.MaxBytes <= 0 {
		c.Ingest.MaxBytes = defaultIngestMaxBytes
	}
	if c.Ingest.WatchDebounceMS <= 0 {
		c.Ingest.WatchDebounceMS = defaultWatchDebounceMS
	}
}

func (c *Config) normalizeHistory() {
	if c.History.Retention <= 0 {
		c.History.Retention = defaultHistoryRetention
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
