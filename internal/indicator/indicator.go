package indicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"baylight/internal/config"
	"baylight/internal/logging"
)

// ErrSlotOutOfRange is returned for a slot the enclosure does not have.
var ErrSlotOutOfRange = errors.New("bay slot out of range")

// ErrBrightnessRange is returned for a brightness outside 1..config.MaxBrightness.
var ErrBrightnessRange = errors.New("brightness out of range")

// Indicator switches bay LEDs. Slots are zero-based.
type Indicator interface {
	Set(color Color, slot int, on bool) error
	SetBrightness(level int) error
}

// Open builds the driver selected by cfg.Indicator.Driver. For the sysfs
// driver it waits up to probe_timeout_seconds for the first bay's LEDs to
// appear.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Indicator, error) {
	if cfg == nil {
		return nil, errors.New("indicator: config is nil")
	}
	color, err := ParseColor(cfg.Indicator.Color)
	if err != nil {
		return nil, err
	}
	bays := cfg.Enclosure.Bays

	switch cfg.Indicator.Driver {
	case "log":
		return NewLog(bays, logger), nil
	case "sysfs":
		leds := NewSysfs(cfg.Indicator.LEDsDir, cfg.Indicator.NamePattern, bays, logger)
		timeout := time.Duration(cfg.Indicator.ProbeTimeoutSeconds) * time.Second
		if err := leds.Probe(ctx, color, timeout); err != nil {
			return nil, err
		}
		return leds, nil
	default:
		return nil, fmt.Errorf("unknown indicator driver %q", cfg.Indicator.Driver)
	}
}

// Clear switches every color of every bay off. All bays are attempted; the
// returned error joins the individual failures.
func Clear(ind Indicator, bays int) error {
	var errs []error
	for slot := range bays {
		if err := ind.Set(Both, slot, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkSlot(slot, bays int) error {
	if slot < 0 || slot >= bays {
		return fmt.Errorf("%w: slot %d, enclosure has %d bays", ErrSlotOutOfRange, slot, bays)
	}
	return nil
}

func checkBrightness(level int) error {
	if level < 1 || level > config.MaxBrightness {
		return fmt.Errorf("%w: %d (want 1-%d)", ErrBrightnessRange, level, config.MaxBrightness)
	}
	return nil
}

func newProbeBackOff(ctx context.Context, timeout time.Duration) backoff.BackOff {
	if timeout <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = timeout
	bo.Reset()
	return backoff.WithContext(bo, ctx)
}

func componentLogger(logger *slog.Logger) *slog.Logger {
	return logging.NewComponentLogger(logger, "indicator")
}
