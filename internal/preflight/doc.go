// Package preflight provides readiness checks for the system resources
// baylight depends on.
//
// The CLI "baylight status" command runs them to explain why the daemon
// cannot start or cannot drive the LEDs: missing privileges, an unexpected
// sysfs mount, LED devices that do not match the configured name pattern, or
// a metrics address already in use.
package preflight
