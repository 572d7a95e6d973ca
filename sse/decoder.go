package sse

import (
	"encoding/json"
	"strings"

	"github.com/poliverai/poliver/types"
)

// dataPrefix marks protocol records. Lines without it (keep-alives, blank
// separators) are not records and are skipped silently.
const dataPrefix = "data: "

// IsRecord reports whether the line carries the record prefix. Callers use
// it to tell a malformed record (worth logging) from protocol noise.
func IsRecord(line string) bool {
	return strings.HasPrefix(line, dataPrefix)
}

// Decode parses one complete line into a StreamEvent.
//
// Returns (nil, false) when the line is not a protocol record or its body
// fails to parse. Decode never fails the stream: a single bad record must
// not abort an otherwise-successful in-progress operation, so the caller
// logs and moves on.
//
// The record body is normally an envelope {event, data}. A parseable body
// without an `event` field is a legacy bare update; it decodes with an
// empty event name and the whole object as payload, which the state
// machine handles as a best-effort processing update.
func Decode(line string) (*types.StreamEvent, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	body := line[len(dataPrefix):]

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, false
	}

	name, _ := raw["event"].(string)
	if name == "" {
		// Legacy bare update: the object itself is the payload.
		return &types.StreamEvent{Event: "", Data: raw}, true
	}

	payload, _ := raw["data"].(map[string]any)
	if payload == nil {
		payload = map[string]any{}
	}
	return &types.StreamEvent{Event: types.EventType(name), Data: payload}, true
}
