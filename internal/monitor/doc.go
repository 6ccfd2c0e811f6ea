// Package monitor keeps the bay indicators in step with the storage devices
// the kernel reports.
//
// Init opens the device tree, subscribes to uevents, enumerates the devices
// already present, calibrates the bay offset from them and lights their bays.
// Run then handles add and remove notifications one at a time until the
// context is cancelled. The subscription is opened before enumeration so a
// device plugged in while enumerating is not missed.
package monitor
