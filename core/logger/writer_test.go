package logger

import (
	"bytes"
	"io"
	"testing"
)

func TestAsyncWriterDeliversAllLinesInOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 0, 2)

	lines := []string{"one\n", "two\n", "three\n", "four\n"}
	for _, line := range lines {
		if err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write %q: %v", line, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := buf.String(); got != "one\ntwo\nthree\nfour\n" {
		t.Fatalf("sink content = %q", got)
	}
}

func TestAsyncWriterSkipsNilAndEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{nil, buf}, 0, 0)

	if err := w.Write(nil); err != nil {
		t.Fatalf("write nil: %v", err)
	}
	if err := w.Write([]byte("line\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := buf.String(); got != "line\n" {
		t.Fatalf("sink content = %q", got)
	}
}
