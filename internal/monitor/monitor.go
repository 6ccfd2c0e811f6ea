package monitor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"baylight/internal/bay"
	"baylight/internal/devtree"
	"baylight/internal/indicator"
	"baylight/internal/logging"
	"baylight/internal/metrics"
)

// Config holds what the monitor needs to know about the enclosure.
type Config struct {
	// SysfsRoot is where sysfs is mounted, normally /sys.
	SysfsRoot string
	// Subsystem and DevType select the storage devices to watch.
	Subsystem string
	DevType   string
	Topology  bay.Topology
	// Color is lit for occupied bays.
	Color indicator.Color
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithChannelOpener replaces the netlink subscription.
func WithChannelOpener(open ChannelOpener) Option {
	return func(m *Monitor) { m.openChannel = open }
}

// WithEnumerator replaces the startup enumeration.
func WithEnumerator(e Enumerator) Option {
	return func(m *Monitor) { m.enumerator = e }
}

// WithMetrics records events and occupancy.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) { m.metrics = mt }
}

// Monitor reconciles existing devices at startup and then follows live
// changes. It is driven by a single goroutine.
type Monitor struct {
	cfg       Config
	indicator indicator.Indicator
	logger    *slog.Logger
	resolver  *bay.Resolver
	metrics   *metrics.Metrics

	openChannel ChannelOpener
	enumerator  Enumerator

	tree    *devtree.Tree
	channel Channel
	ready   bool
}

// New builds a monitor that reports bay changes to ind.
func New(cfg Config, ind indicator.Indicator, logger *slog.Logger, opts ...Option) *Monitor {
	if cfg.Color == 0 {
		cfg.Color = indicator.Blue
	}
	m := &Monitor{
		cfg:       cfg,
		indicator: ind,
		logger:    logging.NewComponentLogger(logger, "monitor"),
		resolver:  bay.NewResolver(cfg.Topology, logger),
	}
	m.openChannel = func(tree *devtree.Tree, subsystem, devtype string) (Channel, error) {
		return OpenNetlink(tree, subsystem, devtype, logger)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolver exposes the bay resolver, including its calibrated offset.
func (m *Monitor) Resolver() *bay.Resolver {
	return m.resolver
}

// Init subscribes to changes, enumerates the devices already present,
// calibrates the bay offset and lights the bays of those devices.
func (m *Monitor) Init(ctx context.Context) error {
	tree, err := devtree.NewTree(m.cfg.SysfsRoot)
	if err != nil {
		return &InitError{Op: OpOpenTree, Err: err}
	}
	m.tree = tree

	channel, err := m.openChannel(tree, m.cfg.Subsystem, m.cfg.DevType)
	if err != nil {
		var initErr *InitError
		if errors.As(err, &initErr) {
			return initErr
		}
		return &InitError{Op: OpNetlinkConnect, Err: err}
	}
	m.channel = channel

	enumerator := m.enumerator
	if enumerator == nil {
		enumerator = DefaultEnumerator(tree, m.logger)
	}
	devices, err := enumerator.Enumerate(ctx, m.cfg.Subsystem, m.cfg.DevType)
	if err != nil {
		m.closeChannel()
		return &InitError{Op: OpEnumerate, Err: err}
	}

	snapshot := m.resolver.Snapshot(devices)
	placements := m.resolver.Reconcile(snapshot)
	for _, placement := range placements {
		m.apply("add", placement.Bay, placement.Device, true)
	}
	m.metrics.SetCalibration(m.resolver.Offset(), len(placements))

	m.ready = true
	m.logger.Info("bay monitor ready",
		logging.String(logging.FieldEventType, "monitor_ready"),
		logging.Int("devices", len(devices)),
		logging.Int("placed", len(placements)),
		logging.Int("offset", m.resolver.Offset()),
	)
	return nil
}

// Run handles changes until ctx is cancelled, which returns nil. A failing
// wait returns *WaitError.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.ready || m.channel == nil {
		return ErrNotInitialized
	}
	for {
		if err := m.channel.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				m.logger.Info("bay monitor stopping", logging.String(logging.FieldEventType, "monitor_stopped"))
				return nil
			}
			return &WaitError{Err: err}
		}
		change, err := m.channel.Receive()
		if err != nil {
			logging.WarnWithContext(m.logger, "uevent record skipped", "uevent_receive_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "one device notification ignored"),
			)
			continue
		}
		m.handle(change)
	}
}

// Close releases the subscription. It is safe to call more than once.
func (m *Monitor) Close() error {
	m.ready = false
	return m.closeChannel()
}

func (m *Monitor) handle(change Change) {
	action := strings.ToLower(strings.TrimSpace(change.Action))
	var on bool
	switch action {
	case "add":
		on = true
	case "remove":
		on = false
	default:
		m.logger.Debug("ignoring uevent action",
			logging.String(logging.FieldAction, change.Action),
			logging.String(logging.FieldSyspath, syspathOf(change.Device)),
		)
		m.metrics.RecordEvent(action, metrics.OutcomeIgnored)
		return
	}

	idx := m.resolver.Resolve(change.Device)
	if !idx.Occupies() {
		m.logger.Debug("device is not in an enclosure bay",
			logging.String(logging.FieldAction, action),
			logging.String(logging.FieldSyspath, syspathOf(change.Device)),
			logging.String("index", idx.String()),
		)
		m.metrics.RecordEvent(action, metrics.OutcomeIgnored)
		return
	}
	m.apply(action, idx.Bay, change.Device, on)
}

func (m *Monitor) apply(action string, bayNumber int, dev devtree.Device, on bool) {
	model, _ := dev.Attribute("model")
	msg := "drive removed"
	if on {
		msg = "drive added"
	}
	m.logger.Info(msg,
		logging.String(logging.FieldEventType, "bay_"+action),
		logging.Int(logging.FieldBay, bayNumber),
		logging.String("model", model),
		logging.String(logging.FieldSyspath, dev.Syspath()),
	)

	if m.indicator == nil {
		return
	}
	if err := m.indicator.Set(m.cfg.Color, bayNumber-1, on); err != nil {
		logging.WarnWithContext(m.logger, "bay indicator update failed", "indicator_failed",
			logging.Error(err),
			logging.Int(logging.FieldBay, bayNumber),
			logging.String(logging.FieldErrorHint, "check indicator.leds_dir, name_pattern and enclosure.bays"),
			logging.String(logging.FieldImpact, "bay LED does not reflect the drive"),
		)
		m.metrics.RecordEvent(action, metrics.OutcomeFailed)
		m.metrics.RecordIndicatorError()
		return
	}
	outcome := metrics.OutcomeCleared
	if on {
		outcome = metrics.OutcomeLit
	}
	m.metrics.RecordEvent(action, outcome)
	m.metrics.SetOccupied(bayNumber, on)
}

// DefaultEnumerator uses the go-udev crawler on the real /sys mount and
// walks the tree directly for any other root.
func DefaultEnumerator(tree *devtree.Tree, logger *slog.Logger) Enumerator {
	if tree.Root() == devtree.DefaultRoot {
		return CrawlerEnumerator{Tree: tree, Logger: logger}
	}
	return TreeEnumerator{Tree: tree}
}

func (m *Monitor) closeChannel() error {
	if m.channel == nil {
		return nil
	}
	err := m.channel.Close()
	m.channel = nil
	return err
}

func syspathOf(dev devtree.Device) string {
	if dev == nil {
		return ""
	}
	return dev.Syspath()
}
