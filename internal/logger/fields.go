package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through context.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldQuery     = "query"
	FieldCategory  = "category"
	FieldProvider  = "provider"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
	FieldScore      = "score"
)
