package sse

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

// chunkReader delivers its payload in fixed-size chunks, simulating an
// arbitrarily-chunked transfer.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func collectLines(t *testing.T, r io.Reader) []string {
	t.Helper()
	sc := NewLineScanner(r)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Line())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return lines
}

func TestLineScanner_CompleteLines(t *testing.T) {
	input := "one\ntwo\nthree\n"
	got := collectLines(t, strings.NewReader(input))
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestLineScanner_DiscardsUnterminatedTail(t *testing.T) {
	input := "one\ntwo\npartial"
	got := collectLines(t, strings.NewReader(input))
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestLineScanner_StripsCarriageReturn(t *testing.T) {
	got := collectLines(t, strings.NewReader("a\r\nb\n"))
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestLineScanner_EmptyLines(t *testing.T) {
	got := collectLines(t, strings.NewReader("a\n\nb\n"))
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

// Chunk-boundary invariance: for every possible chunk size, the same byte
// sequence must produce the identical line sequence.
func TestLineScanner_ChunkBoundaryInvariance(t *testing.T) {
	input := "data: {\"event\":\"started\",\"data\":{}}\n" +
		"data: {\"event\":\"progress\",\"data\":{\"processed\":1,\"total\":4}}\n" +
		"data: {\"event\":\"completed\",\"data\":{\"verdict\":\"ok\"}}\n"
	want := collectLines(t, strings.NewReader(input))

	for size := 1; size <= len(input); size++ {
		got := collectLines(t, &chunkReader{data: []byte(input), size: size})
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("chunk size %d: lines = %v, want %v", size, got, want)
		}
	}
}

// errAfterReader yields its payload then a non-EOF error.
type errAfterReader struct {
	data []byte
	err  error
	done bool
}

func (r *errAfterReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func TestLineScanner_ReadErrorSurfaced(t *testing.T) {
	wantErr := errors.New("connection reset")
	sc := NewLineScanner(&errAfterReader{data: []byte("one\ntwo"), err: wantErr})

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Line())
	}
	if !reflect.DeepEqual(lines, []string{"one"}) {
		t.Errorf("lines = %v, want [one]", lines)
	}
	if !errors.Is(sc.Err(), wantErr) {
		t.Errorf("err = %v, want %v", sc.Err(), wantErr)
	}
}

func TestLineScanner_EmptyStream(t *testing.T) {
	sc := NewLineScanner(strings.NewReader(""))
	if sc.Scan() {
		t.Error("expected no lines from empty stream")
	}
	if sc.Err() != nil {
		t.Errorf("err = %v, want nil", sc.Err())
	}
}
