// Package logging builds the slog loggers used across baylight.
//
// New and NewFromConfig pick the console or JSON handler, the level and the
// outputs. The console handler prints the component attribute as a line
// prefix so daemon output reads "monitor: drive added bay=2".
//
// WarnWithContext and ErrorWithContext keep operator-facing problems shaped
// as event type, impact and next step. NewNop is the logger for tests and
// for wiring that has no logger to hand.
package logging
