package types

// EventType is the server event discriminator carried in the `event` field
// of a stream record.
type EventType string

// Event types emitted by the verify-stream endpoint. Unrecognized values are
// accepted and handled as best-effort processing updates.
const (
	EventTypeStarted         EventType = "started"
	EventTypeProgress        EventType = "progress"
	EventTypeRuleBased       EventType = "rule_based"
	EventTypeCompleted       EventType = "completed"
	EventTypeReportCompleted EventType = "report_completed"
	EventTypeTransaction     EventType = "transaction"
	EventTypeError           EventType = "error"
)

// IsTerminal returns true if this event type can settle a stream.
// `completed` is deliberately not terminal: the server keeps working
// (report persistence) after it, and the stream settles on
// `report_completed` or `error`.
func (e EventType) IsTerminal() bool {
	return e == EventTypeReportCompleted || e == EventTypeError
}

// StreamEvent is one decoded record from the verify-stream line protocol.
// Wire shape: `data: {"event": "...", "data": {...}}`.
// Ephemeral; exists only for the duration of processing one record.
type StreamEvent struct {
	// Event is the event type discriminator. May be empty for legacy
	// records that carry a bare update object instead of an envelope.
	Event EventType `json:"event"`
	// Data is the type-specific payload.
	Data map[string]any `json:"data"`
}

// Status is the client-facing phase of an in-flight analysis.
type Status string

// Stream statuses surfaced through ProgressUpdate.
const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// ProgressUpdate is the client-facing projection of one stream record.
// Each update supersedes the previous one; the final update carrying a
// Result together with settlement is what callers keep.
type ProgressUpdate struct {
	Status   Status          `json:"status"`
	Progress int             `json:"progress"` // 0-100
	Message  string          `json:"message"`
	Result   *AnalysisResult `json:"result,omitempty"`
}
