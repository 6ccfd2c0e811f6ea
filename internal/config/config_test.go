package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"baylight/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BAYLIGHT_LOG_LEVEL", "")

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

	wantState := filepath.Join(tempHome, ".local", "state", "baylight")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.SysfsRoot != "/sys" {
		t.Fatalf("unexpected sysfs root: %q", cfg.Paths.SysfsRoot)
	}
	if cfg.LockPath() != filepath.Join(wantState, "baylight.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Enclosure.Bays != 4 {
		t.Fatalf("expected 4 bays, got %d", cfg.Enclosure.Bays)
	}
	if cfg.Enclosure.HostDevType != "scsi_host" || cfg.Enclosure.InternalBus != "pci" {
		t.Fatalf("unexpected enclosure defaults: %+v", cfg.Enclosure)
	}
	if cfg.Indicator.Brightness != -1 {
		t.Fatalf("expected brightness to be left untouched by default, got %d", cfg.Indicator.Brightness)
	}
	if !cfg.Indicator.ClearOnStart {
		t.Fatal("expected clear_on_start enabled by default")
	}
	if cfg.Metrics.Bind != "" {
		t.Fatalf("expected metrics disabled by default, got %q", cfg.Metrics.Bind)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "baylight.toml")

	type payload struct {
		Enclosure struct {
			Bays        int    `toml:"bays"`
			InternalBus string `toml:"internal_bus"`
		} `toml:"enclosure"`
		Indicator struct {
			Driver     string `toml:"driver"`
			Color      string `toml:"color"`
			Brightness int    `toml:"brightness"`
			SystemLED  string `toml:"system_led"`
		} `toml:"indicator"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Enclosure.Bays = 5
	custom.Enclosure.InternalBus = " pci "
	custom.Indicator.Driver = "LOG"
	custom.Indicator.Color = "Red"
	custom.Indicator.Brightness = 7
	custom.Indicator.SystemLED = " hpex:blue:system "
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("BAYLIGHT_LOG_LEVEL", "")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Enclosure.Bays != 5 {
		t.Fatalf("expected 5 bays, got %d", cfg.Enclosure.Bays)
	}
	if cfg.Enclosure.InternalBus != "pci" {
		t.Fatalf("expected trimmed internal bus, got %q", cfg.Enclosure.InternalBus)
	}
	if cfg.Indicator.Driver != "log" || cfg.Indicator.Color != "red" {
		t.Fatalf("expected lowercased indicator settings, got %+v", cfg.Indicator)
	}
	if cfg.Indicator.Brightness != 7 {
		t.Fatalf("expected brightness 7, got %d", cfg.Indicator.Brightness)
	}
	if cfg.Indicator.SystemLED != "hpex:blue:system" {
		t.Fatalf("expected trimmed system led, got %q", cfg.Indicator.SystemLED)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Enclosure.HostDevType != "scsi_host" {
		t.Fatalf("expected default host devtype to survive partial file, got %q", cfg.Enclosure.HostDevType)
	}
}

func TestEnvOverridesLogLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BAYLIGHT_LOG_LEVEL", "warn")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env level override, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "baylight.toml")
	if err := os.WriteFile(configPath, []byte("[enclosure]\nslots = 4\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"zero bays", func(c *config.Config) { c.Enclosure.Bays = 0 }, "enclosure.bays"},
		{"unknown driver", func(c *config.Config) { c.Indicator.Driver = "i2c" }, "indicator.driver"},
		{"unknown color", func(c *config.Config) { c.Indicator.Color = "green" }, "indicator.color"},
		{"brightness zero", func(c *config.Config) { c.Indicator.Brightness = 0 }, "indicator.brightness"},
		{"brightness too high", func(c *config.Config) { c.Indicator.Brightness = 11 }, "indicator.brightness"},
		{"brightness max", func(c *config.Config) { c.Indicator.Brightness = config.MaxBrightness }, ""},
		{"system led path", func(c *config.Config) { c.Indicator.SystemLED = "../leds/x" }, "indicator.system_led"},
		{"negative probe", func(c *config.Config) { c.Indicator.ProbeTimeoutSeconds = -1 }, "probe_timeout_seconds"},
		{"bad metrics bind", func(c *config.Config) { c.Metrics.Bind = "localhost" }, "metrics.bind"},
		{"metrics bind", func(c *config.Config) { c.Metrics.Bind = "127.0.0.1:9477" }, ""},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "internal_bus") {
		t.Fatalf("sample config missing enclosure settings: %s", contents)
	}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("BAYLIGHT_LOG_LEVEL", "")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Indicator.NamePattern != "baylight:{color}:bay{bay}" {
		t.Fatalf("unexpected name pattern from sample: %q", cfg.Indicator.NamePattern)
	}
}
