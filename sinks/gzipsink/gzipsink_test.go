package gzipsink

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/Spread0x/sauerkraut"
	"github.com/Spread0x/sauerkraut/emitters/jsontext"
)

func TestRoundTrip(t *testing.T) {
	var compressed bytes.Buffer
	sink := New(&compressed)
	w := sauerkraut.NewWriter(jsontext.New(sink))

	tok, err := w.BeginEntry("hello", sauerkraut.String)
	if err != nil {
		t.Fatalf("BeginEntry() failed: %v", err)
	}
	if err := w.PutPrimitive("hello", sauerkraut.String); err != nil {
		t.Fatalf("PutPrimitive() failed: %v", err)
	}
	if err := w.EndEntry(tok); err != nil {
		t.Fatalf("EndEntry() failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	r, err := gzip.NewReader(&compressed)
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	decompressed, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if string(decompressed) != `"hello"` {
		t.Errorf("Expected %q, got %q", `"hello"`, string(decompressed))
	}
}

func TestNewLevelRejectsBadLevel(t *testing.T) {
	if _, err := NewLevel(bytes.NewBuffer(nil), 99); err == nil {
		t.Errorf("Expected an error for an out of range level")
	}
}
