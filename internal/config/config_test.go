package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"chessgif/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "chessgif")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Engine.Binary != "c2g" {
		t.Fatalf("unexpected engine binary: %q", cfg.Engine.Binary)
	}
	if cfg.EngineTimeout() != 0 {
		t.Fatalf("expected unbounded engine timeout by default, got %s", cfg.EngineTimeout())
	}
	if cfg.Worker.OverlapPolicy != "reject" {
		t.Fatalf("unexpected overlap policy: %q", cfg.Worker.OverlapPolicy)
	}
	dark, light := cfg.BoardColors()
	if dark != "#769656" || light != "#eeeed2" {
		t.Fatalf("unexpected default board colors: %s/%s", dark, light)
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", dir)
		}
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "chessgif.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir": "~/gifs",
			"api_bind": "0.0.0.0:9000",
		},
		"engine": map[string]any{
			"binary":          "/opt/c2g/bin/c2g",
			"timeout_seconds": 30,
			"square_size":     80,
			"flip":            true,
		},
		"board": map[string]any{
			"theme":       "NORD",
			"dark_color":  "#ABC",
			"light_color": " #FFFFFF ",
		},
		"worker":  map[string]any{"overlap_policy": "Queue"},
		"logging": map[string]any{"format": "JSON", "level": "DEBUG"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q to be loaded, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "gifs") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.EngineTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.EngineTimeout())
	}
	if cfg.Engine.SquareSize != 80 || !cfg.Engine.Flip {
		t.Fatalf("unexpected engine settings: %+v", cfg.Engine)
	}
	if cfg.Engine.FrameDelayMS != 1000 {
		t.Fatalf("expected missing frame delay to fall back to default, got %d", cfg.Engine.FrameDelayMS)
	}
	if cfg.Board.Theme != "nord" {
		t.Fatalf("expected theme lower-cased, got %q", cfg.Board.Theme)
	}
	dark, light := cfg.BoardColors()
	if dark != "#aabbcc" || light != "#ffffff" {
		t.Fatalf("expected explicit colors to win over theme, got %s/%s", dark, light)
	}
	if cfg.Worker.OverlapPolicy != "queue" {
		t.Fatalf("unexpected overlap policy: %q", cfg.Worker.OverlapPolicy)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"bad color", "[board]\ndark_color = \"notacolor\"\nlight_color = \"#fff\"\n", "invalid color: notacolor"},
		{"half pair", "[board]\ndark_color = \"#000\"\n", "must be set together"},
		{"bad theme", "[board]\ntheme = \"solarized\"\n", "board.theme"},
		{"bad policy", "[worker]\noverlap_policy = \"drop\"\n", "worker.overlap_policy"},
		{"negative timeout", "[engine]\ntimeout_seconds = -1\n", "engine.timeout_seconds"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad bind", "[paths]\napi_bind = \"localhost\"\n", "paths.api_bind"},
		{"unknown key", "[engine]\nbinry = \"c2g\"\n", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load, got %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Board.Theme != "green" {
		t.Fatalf("unexpected sample theme: %q", cfg.Board.Theme)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/x/y")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
