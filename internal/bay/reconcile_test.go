package bay_test

import (
	"testing"

	"baylight/internal/bay"
	"baylight/internal/devtree"
	"baylight/internal/testsupport"
)

func bays(placements []bay.Placement) []int {
	out := make([]int, 0, len(placements))
	for _, p := range placements {
		out = append(out, p.Bay)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReconcileRebasesAfterLeadingHoles(t *testing.T) {
	r := newResolver()
	devices := []devtree.Device{
		testsupport.Disk(4, "pci"),
		testsupport.Disk(0, "usb"),
		testsupport.Disk(2, "pci"),
		testsupport.Disk(1, "usb"),
		testsupport.Disk(3, "pci"),
	}

	snapshot := r.Snapshot(devices)
	if snapshot.Len() != 5 {
		t.Fatalf("expected 5 records, got %d", snapshot.Len())
	}
	entries := snapshot.Entries()
	if !entries[0].Hole() || !entries[1].Hole() || entries[2].Hole() {
		t.Fatalf("unexpected entry layout: %+v", entries)
	}

	placements := r.Reconcile(snapshot)
	if r.Offset() != 2 {
		t.Fatalf("expected offset 2, got %d", r.Offset())
	}
	if got := bays(placements); !equalInts(got, []int{1, 2, 3}) {
		t.Fatalf("expected bays [1 2 3], got %v", got)
	}
	wantSyspaths := []string{devices[2].Syspath(), devices[4].Syspath(), devices[0].Syspath()}
	for i, p := range placements {
		if p.Device.Syspath() != wantSyspaths[i] {
			t.Fatalf("placement %d: expected %s, got %s", i, wantSyspaths[i], p.Device.Syspath())
		}
	}

	// Live resolution after calibration agrees with the announced bays.
	for _, p := range placements {
		if got := r.Resolve(p.Device); got != bay.InternalAt(p.Bay) {
			t.Fatalf("live resolve of %s = %s, want bay %d", p.Device.Syspath(), got, p.Bay)
		}
	}
	// Devices on hosts below the offset no longer occupy a bay.
	if got := r.Resolve(testsupport.Disk(1, "pci")); got.Occupies() {
		t.Fatalf("expected host1 to fall below the enclosure, got %s", got)
	}
}

func TestReconcileWithoutLeadingHolesKeepsOffset(t *testing.T) {
	r := newResolver()
	snapshot := r.Snapshot([]devtree.Device{
		testsupport.Disk(0, "pci"),
		testsupport.Disk(1, "pci"),
	})
	placements := r.Reconcile(snapshot)
	if r.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", r.Offset())
	}
	if got := bays(placements); !equalInts(got, []int{1, 2}) {
		t.Fatalf("expected bays [1 2], got %v", got)
	}
}

func TestReconcileSkipsHolesAfterFirstDevice(t *testing.T) {
	r := newResolver()
	snapshot := r.Snapshot([]devtree.Device{
		testsupport.Disk(0, "pci"),
		testsupport.Disk(1, "usb"),
		testsupport.Disk(2, "pci"),
	})
	placements := r.Reconcile(snapshot)
	if r.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", r.Offset())
	}
	if got := bays(placements); !equalInts(got, []int{1, 3}) {
		t.Fatalf("expected bays [1 3], got %v", got)
	}
}

func TestReconcileOnlyHoles(t *testing.T) {
	r := newResolver()
	placements := r.Reconcile(r.Snapshot([]devtree.Device{
		testsupport.Disk(0, "usb"),
		testsupport.Disk(1, "usb"),
	}))
	if len(placements) != 0 {
		t.Fatalf("expected no placements, got %v", bays(placements))
	}
	if r.Offset() != 2 {
		t.Fatalf("expected offset 2, got %d", r.Offset())
	}
}

func TestSnapshotDropsUnresolvableAndLastWriteWins(t *testing.T) {
	r := newResolver()
	first := testsupport.Disk(1, "pci")
	replacement := testsupport.DiskOn(testsupport.Host(testsupport.Controller("pci"), 1), "NEWER")
	snapshot := r.Snapshot([]devtree.Device{
		first,
		testsupport.NewDevice("/sys/devices/virtual/block/loop0", "block", "disk"),
		replacement,
	})
	if snapshot.Len() != 1 {
		t.Fatalf("expected one record, got %d", snapshot.Len())
	}
	entries := snapshot.Entries()
	model, _ := entries[0].Device.Attribute("model")
	if model != "NEWER" {
		t.Fatalf("expected the later device to win, got model %q", model)
	}

	var empty *bay.Snapshot
	if empty.Len() != 0 || empty.Entries() != nil {
		t.Fatal("expected nil snapshot to be empty")
	}
	if placements := r.Reconcile(empty); len(placements) != 0 {
		t.Fatal("expected no placements for nil snapshot")
	}
}
