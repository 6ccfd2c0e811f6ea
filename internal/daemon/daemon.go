package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"baylight/internal/bay"
	"baylight/internal/config"
	"baylight/internal/indicator"
	"baylight/internal/logging"
	"baylight/internal/metrics"
	"baylight/internal/monitor"
)

// Daemon runs the bay monitor under a single-instance lock.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	indicator indicator.Indicator
	systemLED *indicator.SystemLED
	monitor   *monitor.Monitor
	metrics   *metrics.Metrics
	server    *metricsServer
	runID     string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	offset  atomic.Int64
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool   `json:"running"`
	RunID        string `json:"run_id"`
	LockFilePath string `json:"lock_file"`
	BayOffset    int    `json:"bay_offset"`
	Bays         int    `json:"bays"`
}

// MonitorConfig derives the monitor settings from the configuration.
func MonitorConfig(cfg *config.Config) (monitor.Config, error) {
	color, err := indicator.ParseColor(cfg.Indicator.Color)
	if err != nil {
		return monitor.Config{}, err
	}
	return monitor.Config{
		SysfsRoot: cfg.Paths.SysfsRoot,
		Subsystem: cfg.Enclosure.StorageSubsystem,
		DevType:   cfg.Enclosure.StorageDevType,
		Topology: bay.Topology{
			HostSubsystem: cfg.Enclosure.HostSubsystem,
			HostDevType:   cfg.Enclosure.HostDevType,
			InternalBus:   cfg.Enclosure.InternalBus,
		},
		Color: color,
	}, nil
}

// New constructs a daemon around an opened indicator. Extra monitor options
// replace the netlink subscription or enumeration, mainly for tests.
func New(cfg *config.Config, ind indicator.Indicator, logger *slog.Logger, opts ...monitor.Option) (*Daemon, error) {
	if cfg == nil || ind == nil {
		return nil, errors.New("daemon requires config and indicator")
	}
	monitorCfg, err := MonitorConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("monitor config: %w", err)
	}

	runID := uuid.NewString()
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	mt := metrics.New()
	monitorOpts := append([]monitor.Option{monitor.WithMetrics(mt)}, opts...)

	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		indicator: ind,
		monitor:   monitor.New(monitorCfg, ind, logger, monitorOpts...),
		metrics:   mt,
		runID:     runID,
		lockPath:  cfg.LockPath(),
		lock:      flock.New(cfg.LockPath()),
	}
	if name := cfg.Indicator.SystemLED; name != "" {
		d.systemLED = indicator.NewSystemLED(cfg.Indicator.LEDsDir, name, logger)
	}
	d.server = newMetricsServer(cfg.Metrics.Bind, d, logger)
	return d, nil
}

// Run acquires the lock, prepares the LEDs, initialises the monitor and
// follows device changes until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another baylight daemon instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	d.prepareIndicator()
	d.holdSystemLED()
	defer d.releaseSystemLED()

	if err := d.server.start(ctx); err != nil {
		return err
	}
	defer d.server.stop()

	if err := d.monitor.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if err := d.monitor.Close(); err != nil {
			d.logger.Debug("monitor close failed", logging.Error(err))
		}
	}()

	d.offset.Store(int64(d.monitor.Resolver().Offset()))
	d.running.Store(true)
	defer d.running.Store(false)
	d.logger.Info("baylight daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.Int("bays", d.cfg.Enclosure.Bays),
	)

	err = d.monitor.Run(ctx)
	d.logger.Info("baylight daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
	return err
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		RunID:        d.runID,
		LockFilePath: d.lockPath,
		BayOffset:    int(d.offset.Load()),
		Bays:         d.cfg.Enclosure.Bays,
	}
}

// RunID identifies this daemon process in logs and status output.
func (d *Daemon) RunID() string {
	return d.runID
}

// Metrics returns the daemon's metrics.
func (d *Daemon) Metrics() *metrics.Metrics {
	return d.metrics
}

func (d *Daemon) prepareIndicator() {
	if level := d.cfg.Indicator.Brightness; level > 0 {
		if err := d.indicator.SetBrightness(level); err != nil {
			logging.WarnWithContext(d.logger, "indicator brightness not applied", "indicator_brightness_failed",
				logging.Error(err),
				logging.Int("level", level),
				logging.String(logging.FieldErrorHint, "check indicator.brightness and LED permissions"),
				logging.String(logging.FieldImpact, "bay LEDs keep their current brightness"),
			)
		}
	}
	if !d.cfg.Indicator.ClearOnStart {
		return
	}
	if err := indicator.Clear(d.indicator, d.cfg.Enclosure.Bays); err != nil {
		logging.WarnWithContext(d.logger, "bay indicators not fully cleared", "indicator_clear_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check indicator.leds_dir and indicator.name_pattern"),
			logging.String(logging.FieldImpact, "stale bay LEDs may stay lit until the drive is re-plugged"),
		)
	}
}

func (d *Daemon) holdSystemLED() {
	if d.systemLED == nil {
		return
	}
	if err := d.systemLED.Steady(); err != nil {
		logging.WarnWithContext(d.logger, "system led not set steady", "system_led_failed",
			logging.Error(err),
			logging.String("led", d.systemLED.Name()),
			logging.String(logging.FieldErrorHint, "check indicator.system_led and indicator.leds_dir"),
			logging.String(logging.FieldImpact, "status LED keeps its firmware pattern"),
		)
	}
}

func (d *Daemon) releaseSystemLED() {
	if d.systemLED == nil {
		return
	}
	if err := d.systemLED.Blink(); err != nil {
		logging.WarnWithContext(d.logger, "system led not returned to blinking", "system_led_failed",
			logging.Error(err),
			logging.String("led", d.systemLED.Name()),
			logging.String(logging.FieldImpact, "status LED stays steady after exit"),
		)
	}
}
