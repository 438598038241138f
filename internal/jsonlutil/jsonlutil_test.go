package jsonlutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

type point struct {
	X int `json:"x"`
}

func encodePoint(enc *json.Encoder, p point) error { return enc.Encode(p) }

func never(error) bool { return false }

func TestStartWritesOneLinePerValue(t *testing.T) {
	var b bytes.Buffer
	in, done := Start[point](&b, 1, encodePoint, never)
	for i := 0; i < 3; i++ {
		in <- point{X: i}
	}
	close(in)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\"x\":0}\n{\"x\":1}\n{\"x\":2}\n"
	if b.String() != want {
		t.Fatalf("got %q want %q", b.String(), want)
	}
}

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func TestStartReportsWriteErrors(t *testing.T) {
	boom := errors.New("boom")
	in, done := Start[point](failWriter{boom}, 0, encodePoint, never)
	in <- point{X: 1}
	close(in)
	if err := <-done; !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}

func TestStartSwallowsBrokenPipeAndDrains(t *testing.T) {
	isClosed := func(err error) bool { return errors.Is(err, io.ErrClosedPipe) }
	in, done := Start[point](failWriter{io.ErrClosedPipe}, 1, func(enc *json.Encoder, p point) error {
		return io.ErrClosedPipe
	}, isClosed)
	// More values than the buffer holds: the goroutine must keep draining.
	for i := 0; i < 10; i++ {
		in <- point{X: i}
	}
	close(in)
	if err := <-done; err != nil {
		t.Fatalf("broken pipe should be nil, got %v", err)
	}
}
