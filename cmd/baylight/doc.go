// Package main hosts the baylight CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the bay monitor daemon in the
// foreground, prints one-shot bay surveys, drives individual bay LEDs for
// testing, reports preflight status and scaffolds configuration. Config
// resolution and log level selection happen here so the internal packages
// receive ready-made values.
package main
