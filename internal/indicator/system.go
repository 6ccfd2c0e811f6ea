package indicator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"baylight/internal/logging"
)

// SystemLED is the enclosure's front status LED. Firmware usually leaves it
// blinking on a timer trigger until the OS reports it is up.
type SystemLED struct {
	dir    string
	name   string
	logger *slog.Logger
}

// NewSystemLED returns the LED class device name under dir.
func NewSystemLED(dir, name string, logger *slog.Logger) *SystemLED {
	return &SystemLED{
		dir:    dir,
		name:   name,
		logger: componentLogger(logger),
	}
}

// Name is the LED class device name.
func (l *SystemLED) Name() string {
	return l.name
}

// Steady detaches the LED from its trigger and lights it at full brightness.
func (l *SystemLED) Steady() error {
	dir := filepath.Join(l.dir, l.name)
	if err := writeAttr(dir, "trigger", "none"); err != nil {
		return fmt.Errorf("system led %s: %w", l.name, err)
	}
	maxValue, err := readMaxBrightness(dir)
	if err != nil {
		return fmt.Errorf("system led %s: %w", l.name, err)
	}
	if err := writeAttr(dir, "brightness", strconv.Itoa(maxValue)); err != nil {
		return fmt.Errorf("system led %s: %w", l.name, err)
	}
	l.logger.Debug("system led steady", logging.String("led", l.name))
	return nil
}

// Blink hands the LED back to the kernel timer trigger.
func (l *SystemLED) Blink() error {
	if err := writeAttr(filepath.Join(l.dir, l.name), "trigger", "timer"); err != nil {
		return fmt.Errorf("system led %s: %w", l.name, err)
	}
	l.logger.Debug("system led blinking", logging.String("led", l.name))
	return nil
}

func writeAttr(dir, name, value string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644)
}
