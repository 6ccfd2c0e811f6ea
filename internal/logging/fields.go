package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is the standardized key classifying a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized key for the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one daemon process lifetime.
	FieldRunID = "run_id"
	// FieldBay is the one-based bay number.
	FieldBay = "bay"
	// FieldSyspath is the sysfs path of the device being handled.
	FieldSyspath = "syspath"
	// FieldAction is the uevent action (add, remove, change, ...).
	FieldAction = "action"
)
