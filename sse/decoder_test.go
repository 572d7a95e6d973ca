package sse

import (
	"testing"

	"github.com/poliverai/poliver/types"
)

func TestDecode_Envelope(t *testing.T) {
	event, ok := Decode(`data: {"event":"progress","data":{"processed":2,"total":4}}`)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if event.Event != types.EventTypeProgress {
		t.Errorf("event = %q, want progress", event.Event)
	}
	if event.Data["processed"] != float64(2) {
		t.Errorf("processed = %v, want 2", event.Data["processed"])
	}
}

func TestDecode_NonRecordLines(t *testing.T) {
	for _, line := range []string{
		"",
		": keep-alive",
		"event: progress",
		"random text",
	} {
		if _, ok := Decode(line); ok {
			t.Errorf("Decode(%q) should not produce a record", line)
		}
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	for _, line := range []string{
		`data: {truncated`,
		`data: not json at all`,
		`data: [1,2,3]`,
	} {
		if _, ok := Decode(line); ok {
			t.Errorf("Decode(%q) should fail", line)
		}
	}
}

func TestDecode_UnknownEventAccepted(t *testing.T) {
	event, ok := Decode(`data: {"event":"ingest_started","data":{"message":"ingesting"}}`)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if event.Event != types.EventType("ingest_started") {
		t.Errorf("event = %q, want ingest_started", event.Event)
	}
	if event.Data["message"] != "ingesting" {
		t.Errorf("message = %v, want ingesting", event.Data["message"])
	}
}

func TestDecode_LegacyBareUpdate(t *testing.T) {
	event, ok := Decode(`data: {"status":"processing","progress":40,"message":"checking"}`)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if event.Event != "" {
		t.Errorf("event = %q, want empty (legacy record)", event.Event)
	}
	if event.Data["progress"] != float64(40) {
		t.Errorf("progress = %v, want 40", event.Data["progress"])
	}
}

func TestDecode_MissingDataField(t *testing.T) {
	event, ok := Decode(`data: {"event":"started"}`)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if event.Data == nil {
		t.Error("payload must never be nil")
	}
}
