// Package analysis implements the streaming analysis client: it submits a
// document to the verify-stream endpoint, consumes the chunked line
// protocol, and drives the progress/result state machine until the
// operation settles.
package analysis

import (
	"context"
	"io"

	"github.com/poliverai/poliver/api"
	"github.com/poliverai/poliver/bus"
	"github.com/poliverai/poliver/iox"
	"github.com/poliverai/poliver/log"
	"github.com/poliverai/poliver/metrics"
	"github.com/poliverai/poliver/sse"
	"github.com/poliverai/poliver/types"
)

// verifyPath is the streaming analysis endpoint.
const verifyPath = "/api/v1/verify-stream"

// Mode selects the analysis depth requested from the service.
type Mode string

// Analysis modes accepted by the verify-stream endpoint.
const (
	ModeFast     Mode = "fast"
	ModeBalanced Mode = "balanced"
	ModeDetailed Mode = "detailed"
)

// Document is the file submitted for analysis.
type Document struct {
	// Name is the filename reported to the service.
	Name string
	// Content is the document bytes.
	Content io.Reader
}

// Recorder receives every decoded stream event, e.g. for a transcript
// journal. Record errors are logged, never fatal to the stream.
type Recorder interface {
	Record(event *types.StreamEvent) error
}

// Config configures a streaming analysis client.
type Config struct {
	// API is the shared HTTP client (required).
	API *api.Client
	// Bus receives refresh notifications. May be nil.
	Bus *bus.Bus
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Metrics may be nil.
	Metrics *metrics.Collector
	// Recorder journals decoded events. May be nil.
	Recorder Recorder
}

// Client drives streaming verifications.
type Client struct {
	api       *api.Client
	bus       *bus.Bus
	logger    *log.Logger
	collector *metrics.Collector
	recorder  Recorder
}

// NewClient creates a streaming analysis client.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		api:       cfg.API,
		bus:       cfg.Bus,
		logger:    logger,
		collector: cfg.Metrics,
		recorder:  cfg.Recorder,
	}
}

// StreamVerify submits doc for analysis and processes the event stream
// until it settles. onUpdate (may be nil) receives one ProgressUpdate per
// decoded record, on the calling goroutine, in server emission order.
//
// Returns the settled result, or:
//   - *ServerError: the service reported a terminal error event
//   - *StreamError: the request or a chunk read failed before settlement
//   - ErrNoSettlement: the stream ended cleanly without a terminal event
//   - ctx.Err(): the caller canceled; the stream is abandoned, not settled,
//     and no further callbacks are invoked
func (c *Client) StreamVerify(ctx context.Context, doc Document, mode Mode, onUpdate func(types.ProgressUpdate)) (*types.AnalysisResult, error) {
	if mode == "" {
		mode = ModeFast
	}

	fields := map[string]string{"analysis_mode": string(mode)}
	body, err := c.api.StreamMultipart(ctx, verifyPath, fields, "file", doc.Name, doc.Content)
	if err != nil {
		c.collector.IncStreamsFailed()
		return nil, &StreamError{Err: err}
	}
	defer iox.DiscardClose(body)

	machine := NewMachine(c.bus, c.logger, c.collector, onUpdate)
	scanner := sse.NewLineScanner(body)

	for scanner.Scan() {
		if ctx.Err() != nil {
			c.collector.IncStreamsAbandoned()
			return nil, ctx.Err()
		}

		line := scanner.Line()
		event, ok := sse.Decode(line)
		if !ok {
			if sse.IsRecord(line) {
				// Malformed record: log, count, move on. One bad record
				// must not abort an in-progress operation.
				c.logger.Warn("skipping malformed stream record", map[string]any{
					"line": line,
				})
				c.collector.IncDecodeErrors()
			}
			continue
		}

		c.collector.IncEventsDecoded()
		c.record(event)
		machine.Apply(event)

		if machine.Settled() {
			// Stop reading; closing the body releases the connection even
			// if the server would emit more.
			return machine.Outcome()
		}
	}

	// Distinguish cancellation, transport failure, and clean-but-unsettled end.
	if ctx.Err() != nil {
		c.collector.IncStreamsAbandoned()
		return nil, ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		c.collector.IncStreamsFailed()
		return nil, &StreamError{Err: err}
	}
	c.collector.IncStreamsAbandoned()
	return nil, ErrNoSettlement
}

func (c *Client) record(event *types.StreamEvent) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(event); err != nil {
		c.logger.Warn("transcript record failed", map[string]any{
			"error": err.Error(),
		})
	}
}
