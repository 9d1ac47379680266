// Package natssink publishes pickled output over NATS. The sink is an
// io.Writer a byte-producing emitter drains into; each Flush publishes the
// bytes accumulated since the last one as a single message, so one flushed
// pickle becomes one message on the subject.
package natssink

import (
	"bytes"
	"errors"
	"strings"
	"unicode"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

// Envelope wraps a published pickle with the format name, so mixed-format
// consumers can dispatch without sniffing bytes.
type Envelope struct {
	Format string `msgpack:"format"`
	Data   []byte `msgpack:"data"`
}

// Sink buffers one pickle at a time and publishes on Flush.
type Sink struct {
	conn    *nats.Conn
	subject string
	format  string
	buf     bytes.Buffer
}

// Option configures a Sink.
type Option func(*Sink)

// WithFormat sets the format name stamped on each envelope.
func WithFormat(format string) Option {
	return func(s *Sink) { s.format = format }
}

// New creates a sink publishing to the given subject.
func New(conn *nats.Conn, subject string, opts ...Option) (*Sink, error) {
	if conn == nil {
		return nil, errors.New("natssink: nil connection")
	}
	if subject == "" || strings.ContainsAny(subject, " \t\r\n") {
		return nil, errors.New("natssink: invalid subject")
	}
	s := &Sink{conn: conn, subject: subject}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Write buffers pickled bytes until the next Flush.
func (s *Sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Flush publishes the buffered pickle as one message and resets the buffer.
// Flushing an empty buffer publishes nothing.
func (s *Sink) Flush() error {
	if s.buf.Len() == 0 {
		return nil
	}
	data, err := msgpack.Marshal(&Envelope{Format: s.format, Data: s.buf.Bytes()})
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return err
	}
	s.buf.Reset()
	return nil
}

// Subject builds a subject under the "pickles" namespace. Parts are joined
// with dots, empty parts dropped, and names normalized to kebab-case.
func Subject(parts ...string) string {
	kept := []string{"pickles"}
	for _, part := range parts {
		if part == "" {
			continue
		}
		kept = append(kept, kebab(part))
	}
	return strings.Join(kept, ".")
}

func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '_':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
