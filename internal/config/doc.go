// Package config loads baylight's TOML configuration.
//
// Load applies defaults, decodes the file (unknown keys are rejected),
// expands ~ in paths, applies BAYLIGHT_LOG_LEVEL and validates the result.
// Sections cover the sysfs mount, the enclosure's storage bus layout, the
// LED driver, the metrics listener and logging.
package config
