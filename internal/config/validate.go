package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEnclosure(); err != nil {
		return err
	}
	if err := c.validateIndicator(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEnclosure() error {
	if c.Enclosure.Bays <= 0 {
		return errors.New("enclosure.bays must be positive")
	}
	return nil
}

func (c *Config) validateIndicator() error {
	switch c.Indicator.Driver {
	case "sysfs", "log":
	default:
		return fmt.Errorf("indicator.driver: unsupported value %q (expected sysfs or log)", c.Indicator.Driver)
	}
	switch c.Indicator.Color {
	case "blue", "red", "both":
	default:
		return fmt.Errorf("indicator.color: unsupported value %q (expected blue, red or both)", c.Indicator.Color)
	}
	if c.Indicator.Brightness != -1 && (c.Indicator.Brightness < 1 || c.Indicator.Brightness > MaxBrightness) {
		return fmt.Errorf("indicator.brightness must be -1 or between 1 and %d", MaxBrightness)
	}
	if strings.ContainsRune(c.Indicator.SystemLED, '/') {
		return fmt.Errorf("indicator.system_led: %q must be an LED name, not a path", c.Indicator.SystemLED)
	}
	if c.Indicator.ProbeTimeoutSeconds < 0 {
		return errors.New("indicator.probe_timeout_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Bind == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Metrics.Bind); err != nil {
		return fmt.Errorf("metrics.bind: %w", err)
	}
	return nil
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
