package bay

import (
	"log/slog"

	"baylight/internal/devtree"
	"baylight/internal/logging"
)

// Topology names the nodes the resolver looks for.
type Topology struct {
	// HostSubsystem and HostDevType identify the host adapter ancestor
	// (scsi / scsi_host).
	HostSubsystem string
	HostDevType   string
	// InternalBus is the subsystem the host adapter's parent must be on for
	// the device to count as part of the enclosure (pci).
	InternalBus string
}

// DefaultTopology is the layout of a SATA backplane behind a PCI AHCI
// controller.
var DefaultTopology = Topology{
	HostSubsystem: "scsi",
	HostDevType:   "scsi_host",
	InternalBus:   "pci",
}

// Resolver maps devices to bays. The offset is calibrated once by Reconcile
// and only read afterwards; a Resolver is not safe for concurrent use while
// Reconcile runs.
type Resolver struct {
	topology Topology
	offset   int
	logger   *slog.Logger
}

// NewResolver builds a resolver with a zero offset.
func NewResolver(topology Topology, logger *slog.Logger) *Resolver {
	if topology.HostSubsystem == "" {
		topology.HostSubsystem = DefaultTopology.HostSubsystem
	}
	if topology.HostDevType == "" {
		topology.HostDevType = DefaultTopology.HostDevType
	}
	if topology.InternalBus == "" {
		topology.InternalBus = DefaultTopology.InternalBus
	}
	return &Resolver{
		topology: topology,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// Offset returns the calibrated slot offset.
func (r *Resolver) Offset() int {
	return r.offset
}

// Resolve computes the bay a device occupies.
func (r *Resolver) Resolve(dev devtree.Device) Index {
	if dev == nil {
		return Unresolved
	}
	host, ok := devtree.AncestorWith(dev, r.topology.HostSubsystem, r.topology.HostDevType)
	if !ok {
		return Unresolved
	}
	r.logger.Debug("host adapter found",
		logging.String(logging.FieldSyspath, dev.Syspath()),
		logging.String("host", devtree.Describe(host)),
	)

	sysnum, ok := host.Sysnum()
	if !ok {
		return Unresolved
	}
	candidate := sysnum - r.offset + 1

	parent, ok := host.Parent()
	if !ok {
		return r.assumeInternal(dev, candidate, "host adapter has no parent")
	}
	transport := parent.Subsystem()
	if transport == "" {
		// Some controllers expose a parent without a subsystem link.
		return r.assumeInternal(dev, candidate, "host adapter parent has no subsystem")
	}

	r.logger.Debug("host adapter transport",
		logging.String(logging.FieldSyspath, dev.Syspath()),
		logging.Int("sysnum", sysnum),
		logging.String("transport", transport),
	)
	if transport == r.topology.InternalBus {
		return InternalAt(candidate)
	}
	return ExternalAt(candidate)
}

func (r *Resolver) assumeInternal(dev devtree.Device, candidate int, reason string) Index {
	r.logger.Debug("transport unknown, assuming internal",
		logging.String(logging.FieldSyspath, dev.Syspath()),
		logging.Int(logging.FieldBay, candidate),
		logging.String("reason", reason),
	)
	return Index{Kind: Internal, Bay: candidate, Assumed: true}
}
