package bay

import (
	"maps"
	"slices"

	"baylight/internal/devtree"
	"baylight/internal/logging"
)

// Entry is one record of a startup snapshot. Device is nil for a hole: a
// device on the storage bus that is not part of the enclosure.
type Entry struct {
	Key    int
	Device devtree.Device
}

// Hole reports whether the entry is an external placeholder.
func (e Entry) Hole() bool { return e.Device == nil }

// Snapshot is the ordered result of resolving every device present at
// startup.
type Snapshot struct {
	records map[int]devtree.Device
}

// Placement is a device assigned to a bay by Reconcile.
type Placement struct {
	Bay    int
	Device devtree.Device
}

// Snapshot resolves each device and keeps internal devices and external
// holes keyed by bay magnitude. Unresolvable devices are dropped. A later
// device with the same key replaces an earlier one.
func (r *Resolver) Snapshot(devices []devtree.Device) *Snapshot {
	s := &Snapshot{records: make(map[int]devtree.Device, len(devices))}
	for _, dev := range devices {
		idx := r.Resolve(dev)
		switch idx.Kind {
		case Internal:
			s.records[idx.Bay] = dev
		case External:
			s.records[idx.Bay] = nil
		default:
			continue
		}
		r.logger.Debug("snapshot entry",
			logging.String(logging.FieldSyspath, dev.Syspath()),
			logging.String("index", idx.String()),
		)
	}
	return s
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Entries returns the records in ascending key order.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	keys := slices.Sorted(maps.Keys(s.records))
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, Entry{Key: key, Device: s.records[key]})
	}
	return out
}

// Reconcile calibrates the offset from the snapshot and returns the
// placements to announce, in ascending bay order.
//
// Holes below the first internal device move the offset up to their key so
// that the first internal device becomes bay 1. After the first internal
// device the offset is frozen and further holes are skipped. Placements are
// re-based against the calibrated offset, matching what Resolve reports for
// the same devices afterwards. Reconcile is meant to run once, before live
// events are resolved.
func (r *Resolver) Reconcile(s *Snapshot) []Placement {
	var placements []Placement
	base := r.offset
	found := false
	for _, entry := range s.Entries() {
		if entry.Hole() {
			if !found {
				r.offset = base + entry.Key
			}
			continue
		}
		if !found {
			r.logger.Debug("bay offset calibrated", logging.Int("offset", r.offset))
			found = true
		}
		placements = append(placements, Placement{
			Bay:    entry.Key - (r.offset - base),
			Device: entry.Device,
		})
	}
	return placements
}
