// Package sse implements the verify-stream line protocol: reassembling
// newline-terminated records out of arbitrarily-chunked response bodies and
// decoding them into typed stream events.
//
// The only delivery guarantee from the transport is in-order chunks, not
// alignment to record boundaries. A record split across chunks must decode
// identically to one delivered whole.
package sse

import (
	"bytes"
	"errors"
	"io"
)

// readSize is the per-Read buffer size. Chunks from the server are typically
// a few hundred bytes; 4 KiB avoids repeated reads without hoarding memory.
const readSize = 4 * 1024

// LineScanner reassembles complete newline-terminated lines from an
// io.Reader delivering arbitrarily-sized chunks. A trailing fragment that
// never acquires a newline before EOF is discarded, never delivered: an
// unterminated record cannot be distinguished from a truncated one, so it
// is dropped rather than risk acting on a partial record.
//
// Usage mirrors bufio.Scanner:
//
//	sc := sse.NewLineScanner(body)
//	for sc.Scan() {
//	    line := sc.Line()
//	}
//	if err := sc.Err(); err != nil { ... }
type LineScanner struct {
	r       io.Reader
	carry   []byte   // partial line carried across chunk boundaries
	pending [][]byte // complete lines not yet handed out
	line    string
	err     error
	done    bool
}

// NewLineScanner creates a scanner over r.
func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{r: r}
}

// Scan advances to the next complete line. It returns false at end of
// stream or on read error; Err distinguishes the two.
func (s *LineScanner) Scan() bool {
	for {
		if len(s.pending) > 0 {
			s.line = string(s.pending[0])
			s.pending = s.pending[1:]
			return true
		}
		if s.done {
			return false
		}

		buf := make([]byte, readSize)
		n, err := s.r.Read(buf)
		if n > 0 {
			s.ingest(buf[:n])
		}
		if err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			// The carry is an unterminated fragment; discard it.
			s.carry = nil
		}
	}
}

// ingest appends a chunk to the carry buffer and moves any complete lines
// into the pending queue, retaining the final fragment as the new carry.
func (s *LineScanner) ingest(chunk []byte) {
	s.carry = append(s.carry, chunk...)
	parts := bytes.Split(s.carry, []byte{'\n'})
	// All but the last part are complete lines; the last is the new carry.
	for _, p := range parts[:len(parts)-1] {
		s.pending = append(s.pending, bytes.TrimSuffix(p, []byte{'\r'}))
	}
	tail := parts[len(parts)-1]
	s.carry = append([]byte(nil), tail...)
}

// Line returns the line produced by the last successful Scan, without its
// terminating newline.
func (s *LineScanner) Line() string {
	return s.line
}

// Err returns the first read error other than io.EOF.
func (s *LineScanner) Err() error {
	return s.err
}
