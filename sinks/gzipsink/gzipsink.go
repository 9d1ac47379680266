// Package gzipsink compresses pickled output on its way to an underlying
// writer, for pickles at rest. It uses the gzip implementation from
// github.com/klauspost/compress.
package gzipsink

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Sink is a compressing io.Writer with pickle-boundary flushing.
type Sink struct {
	gz *gzip.Writer
}

// New creates a sink compressing into w at the default level.
func New(w io.Writer) *Sink {
	return &Sink{gz: gzip.NewWriter(w)}
}

// NewLevel creates a sink compressing at the given gzip level.
func NewLevel(w io.Writer, level int) (*Sink, error) {
	gz, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return nil, err
	}
	return &Sink{gz: gz}, nil
}

func (s *Sink) Write(p []byte) (int, error) {
	return s.gz.Write(p)
}

// Flush makes everything written so far readable by a decompressor, at some
// cost in ratio. Emitters call this at pickle boundaries.
func (s *Sink) Flush() error {
	return s.gz.Flush()
}

// Close finishes the gzip stream. The underlying writer stays open.
func (s *Sink) Close() error {
	return s.gz.Close()
}
