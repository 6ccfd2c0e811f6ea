// Package daemon coordinates the long-running baylight process.
//
// It wires configuration, the bay indicator, the device monitor and the
// optional metrics listener into a single lifecycle with flock-based locking
// to prevent two daemons from driving the same LEDs. Device handling itself
// lives in the monitor package; the daemon focuses on startup, shutdown and
// high level coordination.
package daemon
