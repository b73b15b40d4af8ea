package config

const (
	defaultDataDir           = "~/.local/share/chessgif"
	defaultLogDir            = "~/.local/share/chessgif/logs"
	defaultAPIBind           = "127.0.0.1:7488"
	defaultEngineBinary      = "c2g"
	defaultSquareSize        = 60
	defaultFrameDelayMS      = 1000
	defaultFirstFrameDelayMS = 1000
	defaultLastFrameDelayMS  = 5000
	defaultBoardTheme        = "green"
	defaultOverlapPolicy     = "reject"
	defaultIngestMaxBytes    = 1 << 20
	defaultWatchDebounceMS   = 200
	defaultHistoryRetention  = 500
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Engine: Engine{
			Binary:            defaultEngineBinary,
			SquareSize:        defaultSquareSize,
			FrameDelayMS:      defaultFrameDelayMS,
			FirstFrameDelayMS: defaultFirstFrameDelayMS,
			LastFrameDelayMS:  defaultLastFrameDelayMS,
		},
		Board: Board{
			Theme: defaultBoardTheme,
		},
		Worker: Worker{
			OverlapPolicy: defaultOverlapPolicy,
		},
		Ingest: Ingest{
			MaxBytes:        defaultIngestMaxBytes,
			WatchDebounceMS: defaultWatchDebounceMS,
		},
		History: History{
			Enabled:   true,
			Retention: defaultHistoryRetention,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
