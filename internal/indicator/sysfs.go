package indicator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"baylight/internal/config"
	"baylight/internal/logging"
)

// Sysfs drives LED class devices. LED names come from a pattern with
// {color}, {slot} (zero-based) and {bay} (one-based) placeholders.
type Sysfs struct {
	dir     string
	pattern string
	bays    int
	logger  *slog.Logger

	mu sync.Mutex
	// level is the configured brightness step; 0 means full brightness.
	level int
	lit   map[string]bool
}

// NewSysfs returns a driver for the LEDs under dir.
func NewSysfs(dir, pattern string, bays int, logger *slog.Logger) *Sysfs {
	return &Sysfs{
		dir:     dir,
		pattern: pattern,
		bays:    bays,
		logger:  componentLogger(logger),
		lit:     make(map[string]bool),
	}
}

// Name returns the LED class name for one color of a slot.
func (s *Sysfs) Name(color Color, slot int) string {
	return strings.NewReplacer(
		"{color}", color.String(),
		"{slot}", strconv.Itoa(slot),
		"{bay}", strconv.Itoa(slot+1),
	).Replace(s.pattern)
}

// Set switches the given colors of slot on or off. Switching off an LED
// that does not exist is not an error.
func (s *Sysfs) Set(color Color, slot int, on bool) error {
	if err := checkSlot(slot, s.bays); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, single := range color.Each() {
		if err := s.write(s.Name(single, slot), on); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetBrightness scales lit LEDs to level/10 of their max_brightness and
// applies the same level to LEDs lit later. Bay LEDs found on in sysfs count
// as lit.
func (s *Sysfs) SetBrightness(level int) error {
	if err := checkBrightness(level); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.level = level
	s.adoptLit()
	s.logger.Debug("brightness set", logging.Int("level", level))

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(s.lit)) {
		if err := s.write(name, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Probe waits until the first bay's LEDs for color exist. A zero timeout
// checks once.
func (s *Sysfs) Probe(ctx context.Context, color Color, timeout time.Duration) error {
	attempt := 0
	operation := func() error {
		attempt++
		for _, single := range color.Each() {
			name := s.Name(single, 0)
			if _, err := os.Stat(filepath.Join(s.dir, name, "brightness")); err != nil {
				s.logger.Debug("led not present yet",
					logging.String("led", name),
					logging.Int("attempt", attempt),
				)
				return fmt.Errorf("led %s: %w", name, err)
			}
		}
		return nil
	}
	if err := backoff.Retry(operation, newProbeBackOff(ctx, timeout)); err != nil {
		return fmt.Errorf("probe leds in %s: %w", s.dir, err)
	}
	s.logger.Debug("leds present", logging.String("dir", s.dir), logging.Int("attempts", attempt))
	return nil
}

func (s *Sysfs) write(name string, on bool) error {
	dir := filepath.Join(s.dir, name)
	value := 0
	if on {
		maxValue, err := readMaxBrightness(dir)
		if err != nil {
			return fmt.Errorf("set led %s: %w", name, err)
		}
		value = scaleBrightness(maxValue, s.level)
	}
	err := os.WriteFile(filepath.Join(dir, "brightness"), []byte(strconv.Itoa(value)+"\n"), 0o644)
	if err != nil && !on && errors.Is(err, fs.ErrNotExist) {
		delete(s.lit, name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("set led %s: %w", name, err)
	}
	if on {
		s.lit[name] = true
	} else {
		delete(s.lit, name)
	}
	return nil
}

// adoptLit records bay LEDs that are already on, so a driver opened after
// another process lit them still rescales them.
func (s *Sysfs) adoptLit() {
	for slot := range s.bays {
		for _, single := range Both.Each() {
			name := s.Name(single, slot)
			data, err := os.ReadFile(filepath.Join(s.dir, name, "brightness"))
			if err != nil {
				continue
			}
			if value, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && value > 0 {
				s.lit[name] = true
			}
		}
	}
}

func readMaxBrightness(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse max_brightness: %w", err)
	}
	if value < 1 {
		value = 1
	}
	return value, nil
}

func scaleBrightness(maxValue, level int) int {
	if level <= 0 {
		return maxValue
	}
	value := maxValue * level / config.MaxBrightness
	if value < 1 {
		value = 1
	}
	return value
}
