package analysis

import (
	"math"

	"github.com/poliverai/poliver/bus"
	"github.com/poliverai/poliver/log"
	"github.com/poliverai/poliver/metrics"
	"github.com/poliverai/poliver/types"
)

// Machine maps decoded stream events onto the progress/result model and
// decides when the operation settles.
//
// Settlement rules:
//   - `completed` records the candidate final result but does NOT settle:
//     the server keeps working (report persistence) after the analysis
//     itself finishes, and control must not return to the caller until
//     that work's completion signal arrives.
//   - `report_completed` settles with the recorded candidate.
//   - `error` settles as failure immediately, regardless of any candidate.
//   - Once settled, all further events are ignored (no double-settlement).
type Machine struct {
	bus       *bus.Bus
	logger    *log.Logger
	collector *metrics.Collector
	onUpdate  func(types.ProgressUpdate)

	candidate *types.AnalysisResult
	settled   bool
	result    *types.AnalysisResult
	failure   error
}

// NewMachine creates a machine for one stream. onUpdate may be nil.
func NewMachine(b *bus.Bus, logger *log.Logger, collector *metrics.Collector, onUpdate func(types.ProgressUpdate)) *Machine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Machine{
		bus:       b,
		logger:    logger,
		collector: collector,
		onUpdate:  onUpdate,
	}
}

// Apply processes one decoded event. Each event is processed to completion,
// including any settlement decision, before the caller reads further input;
// that is what guarantees later events cannot be observed before an earlier
// settlement.
func (m *Machine) Apply(event *types.StreamEvent) {
	if m.settled {
		m.logger.Debug("ignoring event after settlement", map[string]any{
			"event": string(event.Event),
		})
		return
	}

	switch event.Event {
	case types.EventTypeStarted:
		m.emit(types.ProgressUpdate{Status: types.StatusStarting, Progress: 0, Message: "started"})

	case types.EventTypeProgress, types.EventTypeRuleBased:
		m.emit(types.ProgressUpdate{
			Status:   types.StatusProcessing,
			Progress: progressPercent(event.Data),
			Message:  stringField(event.Data, "message"),
		})

	case types.EventTypeCompleted:
		m.recordCandidate(event.Data)

	case types.EventTypeReportCompleted:
		m.settleOnReport(event.Data)

	case types.EventTypeTransaction:
		// Side-channel: the backend recorded a transaction. Refresh
		// balance-derived views; no effect on settlement.
		m.publish(bus.TopicRefreshUser, nil)
		m.publish(bus.TopicRefreshTransactions, nil)

	case types.EventTypeError:
		message := stringField(event.Data, "message")
		if message == "" {
			message = "unknown error"
		}
		m.emit(types.ProgressUpdate{Status: types.StatusError, Progress: 0, Message: message})
		m.settled = true
		m.failure = &ServerError{Message: message}
		m.collector.IncStreamsFailed()

	default:
		// Unknown or legacy record: surface as a best-effort processing
		// update, never a settlement.
		m.emit(types.ProgressUpdate{
			Status:   types.StatusProcessing,
			Progress: progressPercent(event.Data),
			Message:  stringField(event.Data, "message"),
		})
	}
}

// recordCandidate handles a `completed` event: the attached result becomes
// the candidate final result and balance-derived views are refreshed (a
// completed analysis may have debited the user's balance).
func (m *Machine) recordCandidate(payload map[string]any) {
	result, err := types.ResultFromPayload(payload)
	if err != nil {
		m.logger.Error("completed event carried undecodable result", map[string]any{
			"error": err.Error(),
		})
	} else {
		m.candidate = result
	}

	m.emit(types.ProgressUpdate{
		Status:   types.StatusCompleted,
		Progress: 100,
		Message:  "completed",
		Result:   m.candidate,
	})
	m.publish(bus.TopicRefreshUser, nil)
	m.publish(bus.TopicRefreshTransactions, nil)
}

// settleOnReport handles `report_completed`, the true terminal event in the
// common case. Without a candidate it is a late or duplicate signal and is
// ignored.
func (m *Machine) settleOnReport(payload map[string]any) {
	if m.candidate == nil {
		m.logger.Warn("report_completed without candidate result, ignoring", nil)
		return
	}

	path := stringField(payload, "path")
	if path == "" {
		path = stringField(payload, "filename")
	}
	m.publish(bus.TopicRefreshReports, path)

	m.settled = true
	m.result = m.candidate
	m.collector.IncStreamsSettled()
}

// Settled returns true once the machine has reached a terminal state.
func (m *Machine) Settled() bool {
	return m.settled
}

// Outcome returns the settled result or failure. Only meaningful after
// Settled reports true.
func (m *Machine) Outcome() (*types.AnalysisResult, error) {
	return m.result, m.failure
}

func (m *Machine) emit(update types.ProgressUpdate) {
	if m.onUpdate != nil {
		m.onUpdate(update)
	}
}

func (m *Machine) publish(topic string, payload any) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(topic, payload)
	m.collector.IncNotificationsPublished()
}

// progressPercent computes a 0-100 percentage from an event payload.
// An explicit `progress` value wins; otherwise it is derived from
// processed/total, treating total < 1 as 1 to guard the division.
func progressPercent(payload map[string]any) int {
	if p, ok := numberField(payload, "progress"); ok {
		return clampPercent(int(math.Round(p)))
	}

	processed, okP := numberField(payload, "processed")
	total, okT := numberField(payload, "total")
	if okP && okT {
		if total < 1 {
			total = 1
		}
		return clampPercent(int(math.Round(processed / total * 100)))
	}
	return 0
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// numberField extracts a numeric payload field. JSON decoding yields
// float64 for all numbers, but transcript replay can surface integers.
func numberField(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
