// Package devtree exposes the kernel device hierarchy as a read-only graph of
// Device handles.
//
// Handles are cheap views over sysfs: they carry the identity and properties
// reported for a single device and resolve parents lazily by walking the
// syspath upwards. Nothing here holds file descriptors, so a handle can be
// dropped at any time without cleanup.
//
// Absent data is a normal outcome on real hardware (controllers routinely
// omit subsystem links or numeric suffixes), so lookups report presence with
// a boolean instead of failing.
package devtree
