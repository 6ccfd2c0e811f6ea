package indicator

import (
	"log/slog"
	"sync"

	"baylight/internal/logging"
)

// Log is a driver without hardware. It records and logs every state change,
// which is enough to run the daemon on machines without bay LEDs.
type Log struct {
	bays   int
	logger *slog.Logger

	mu    sync.Mutex
	lit   map[ledKey]bool
	level int
}

type ledKey struct {
	color Color
	slot  int
}

// NewLog returns a logging driver for an enclosure with bays slots.
func NewLog(bays int, logger *slog.Logger) *Log {
	return &Log{
		bays:   bays,
		logger: componentLogger(logger),
		lit:    make(map[ledKey]bool),
	}
}

func (l *Log) Set(color Color, slot int, on bool) error {
	if err := checkSlot(slot, l.bays); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, single := range color.Each() {
		key := ledKey{color: single, slot: slot}
		if on {
			l.lit[key] = true
		} else {
			delete(l.lit, key)
		}
	}
	l.logger.Info("bay indicator",
		logging.Int(logging.FieldBay, slot+1),
		logging.String("color", color.String()),
		logging.Bool("on", on),
	)
	return nil
}

func (l *Log) SetBrightness(level int) error {
	if err := checkBrightness(level); err != nil {
		return err
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
	l.logger.Info("indicator brightness", logging.Int("level", level))
	return nil
}

// Lit reports whether color is on for slot.
func (l *Log) Lit(color Color, slot int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lit[ledKey{color: color, slot: slot}]
}

// Brightness returns the last level set, or 0.
func (l *Log) Brightness() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}
