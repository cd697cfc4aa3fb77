package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldIndex is the zero-based position of a prediction record in its input list.
	FieldIndex = "index"
	// FieldReason is the machine-readable cause of a dropped record.
	FieldReason = "reason"
	// FieldCategory is the category name carried by a record.
	FieldCategory = "category"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldPath is the file a log line refers to.
	FieldPath = "path"
	// FieldCount is a generic item count.
	FieldCount = "count"
)
