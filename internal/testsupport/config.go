package testsupport

import (
	"path/filepath"
	"testing"

	"baylight/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to the log indicator driver so nothing touches real LEDs, and
// applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SysfsRoot = filepath.Join(base, "sys")
	cfgVal.Indicator.Driver = "log"
	cfgVal.Indicator.LEDsDir = filepath.Join(base, "sys", "class", "leds")
	cfgVal.Indicator.ProbeTimeoutSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSysfs points the config at a fake sysfs tree.
func WithSysfs(s *Sysfs) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.SysfsRoot = s.Root()
		b.cfg.Indicator.LEDsDir = filepath.Join(s.Root(), "class", "leds")
	}
}

// WithIndicatorDriver overrides the LED driver.
func WithIndicatorDriver(driver string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Indicator.Driver = driver
	}
}

// WithBays overrides the enclosure bay count.
func WithBays(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Enclosure.Bays = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
