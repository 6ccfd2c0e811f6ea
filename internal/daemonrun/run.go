// Package daemonrun owns the daemon process runtime: signal handling,
// logger construction and wiring the daemon to its indicator.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"baylight/internal/config"
	"baylight/internal/daemon"
	"baylight/internal/indicator"
	"baylight/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides the configured level when non-empty.
	LogLevel string
}

// Run starts the baylight daemon and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg, opts.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logConfigSnapshot(logger, cfg)

	leds, err := indicator.Open(signalCtx, cfg, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "indicator unavailable", "indicator_open_failed",
			logging.Error(err),
			logging.String("driver", cfg.Indicator.Driver),
			logging.String(logging.FieldErrorHint, "load the LED driver or set indicator.driver = \"log\""),
		)
		return fmt.Errorf("open indicator: %w", err)
	}

	d, err := daemon.New(cfg, leds, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("baylight daemon shutting down")
	return nil
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("sysfs_root", cfg.Paths.SysfsRoot),
		logging.Int("bays", cfg.Enclosure.Bays),
		logging.String("storage", cfg.Enclosure.StorageSubsystem+"/"+cfg.Enclosure.StorageDevType),
		logging.String("host", cfg.Enclosure.HostSubsystem+"/"+cfg.Enclosure.HostDevType),
		logging.String("internal_bus", cfg.Enclosure.InternalBus),
		logging.String("indicator_driver", cfg.Indicator.Driver),
		logging.String("indicator_color", cfg.Indicator.Color),
		logging.String("metrics_bind", cfg.Metrics.Bind),
	)
}
