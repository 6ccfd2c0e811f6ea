// Package indicator drives the per-bay LEDs.
//
// Two drivers exist: a sysfs driver that writes LED class devices
// (/sys/class/leds/<name>/brightness) and a log driver that only records the
// requested state. Open selects one from configuration and, for sysfs, waits
// for the LED devices to appear since the platform LED module may load after
// the daemon starts.
package indicator
