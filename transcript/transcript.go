// Package transcript implements an append-only journal of decoded stream
// events, for debugging and offline replay of an analysis run.
//
// Records are msgpack-encoded and framed with a 4-byte big-endian length
// prefix, so a journal survives truncation at any frame boundary.
package transcript

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/poliverai/poliver/types"
)

// Frame size constants.
const (
	// MaxPayloadSize is the maximum record payload size (16 MiB minus prefix).
	MaxPayloadSize = 16*1024*1024 - lengthPrefixSize
	// lengthPrefixSize is the size of the length prefix in bytes.
	lengthPrefixSize = 4
)

// Record is one journaled stream event.
type Record struct {
	// Seq is the 1-based position of the event within its stream.
	Seq int64 `msgpack:"seq"`
	// Ts is the local receive time, unix nanoseconds.
	Ts int64 `msgpack:"ts"`
	// Event is the event name; empty for legacy bare updates.
	Event string `msgpack:"event"`
	// Data is the event payload.
	Data map[string]any `msgpack:"data"`
}

// Writer appends records to a journal. Safe for use from one goroutine at
// a time per the stream's single-reader loop; the mutex guards the
// occasional concurrent Close.
type Writer struct {
	mu     sync.Mutex
	w      io.WriteCloser
	seq    int64
	closed bool
}

// Create opens a journal file for writing, truncating any previous
// journal at the same path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}
	return NewWriter(f), nil
}

// NewWriter wraps an arbitrary destination as a journal writer.
func NewWriter(w io.WriteCloser) *Writer {
	return &Writer{w: w}
}

// Record implements the stream client's recorder hook: it journals one
// decoded event, assigning the next sequence number.
func (w *Writer) Record(event *types.StreamEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("transcript: writer closed")
	}

	w.seq++
	record := Record{
		Seq:   w.seq,
		Ts:    time.Now().UnixNano(),
		Event: string(event.Event),
		Data:  event.Data,
	}

	payload, err := msgpack.Marshal(&record)
	if err != nil {
		return fmt.Errorf("transcript: encode record: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("transcript: record size %d exceeds maximum %d", len(payload), MaxPayloadSize)
	}

	var prefix [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.w.Write(prefix[:]); err != nil {
		return fmt.Errorf("transcript: write length prefix: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("transcript: write payload: %w", err)
	}
	return nil
}

// Close closes the underlying destination. Further Record calls fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.w.Close()
}

// Reader iterates a journal.
type Reader struct {
	r io.Reader
}

// Open opens a journal file for reading.
func Open(path string) (*Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open transcript: %w", err)
	}
	return NewReader(f), f, nil
}

// NewReader wraps an arbitrary source as a journal reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next reads the next record. Returns io.EOF when the journal ends
// cleanly at a frame boundary; a journal truncated mid-frame returns a
// descriptive error instead.
func (r *Reader) Next() (*Record, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("transcript: truncated length prefix: %w", err)
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxPayloadSize {
		return nil, fmt.Errorf("transcript: record size %d exceeds maximum %d", size, MaxPayloadSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("transcript: truncated payload: %w", err)
	}

	var record Record
	if err := msgpack.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("transcript: decode record: %w", err)
	}
	return &record, nil
}
