package monitor

import (
	"errors"
	"fmt"
)

// Setup steps reported by InitError.
const (
	OpOpenTree       = "open device tree"
	OpNetlinkConnect = "netlink connect"
	OpEventfd        = "eventfd"
	OpEnumerate      = "enumerate"
)

// ErrNotInitialized is returned by Run before a successful Init.
var ErrNotInitialized = errors.New("monitor not initialized")

// ErrNoRecord is returned by Receive when Wait has not reported a record.
var ErrNoRecord = errors.New("no uevent record pending")

// InitError reports which setup step failed.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("monitor init: %s: %v", e.Op, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// WaitError reports a failure of the blocking wait other than cancellation.
type WaitError struct {
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("monitor wait: %v", e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }
