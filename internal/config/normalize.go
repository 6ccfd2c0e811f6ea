package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEnclosure()
	if err := c.normalizeIndicator(); err != nil {
		return err
	}
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SysfsRoot) == "" {
		c.Paths.SysfsRoot = defaultSysfsRoot
	}
	if c.Paths.SysfsRoot, err = expandPath(c.Paths.SysfsRoot); err != nil {
		return fmt.Errorf("paths.sysfs_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	// An empty log_dir disables file logging.
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEnclosure() {
	trim := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	trim(&c.Enclosure.StorageSubsystem, defaultStorageSubsystem)
	trim(&c.Enclosure.StorageDevType, defaultStorageDevType)
	trim(&c.Enclosure.HostSubsystem, defaultHostSubsystem)
	trim(&c.Enclosure.HostDevType, defaultHostDevType)
	trim(&c.Enclosure.InternalBus, defaultInternalBus)
}

func (c *Config) normalizeIndicator() error {
	c.Indicator.Driver = strings.ToLower(strings.TrimSpace(c.Indicator.Driver))
	if c.Indicator.Driver == "" {
		c.Indicator.Driver = defaultIndicatorDriver
	}
	c.Indicator.Color = strings.ToLower(strings.TrimSpace(c.Indicator.Color))
	if c.Indicator.Color == "" {
		c.Indicator.Color = defaultIndicatorColor
	}
	c.Indicator.NamePattern = strings.TrimSpace(c.Indicator.NamePattern)
	if c.Indicator.NamePattern == "" {
		c.Indicator.NamePattern = defaultLEDNamePattern
	}
	c.Indicator.SystemLED = strings.TrimSpace(c.Indicator.SystemLED)
	if strings.TrimSpace(c.Indicator.LEDsDir) == "" {
		c.Indicator.LEDsDir = defaultLEDsDir
	}
	var err error
	if c.Indicator.LEDsDir, err = expandPath(c.Indicator.LEDsDir); err != nil {
		return fmt.Errorf("indicator.leds_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("BAYLIGHT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
