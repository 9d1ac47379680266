// Package trace provides a wrapping backend that logs every protocol event
// it receives before forwarding to an inner emitter. It is a debugging aid
// for drivers and derivation machinery: the logged sequence is exactly the
// validated sequence the inner backend sees.
package trace

import (
	"github.com/rs/zerolog"

	"github.com/Spread0x/sauerkraut"
)

// Emitter logs protocol events through zerolog. With a nil inner emitter it
// only logs, which is enough to inspect a driver's call sequence.
type Emitter struct {
	log  zerolog.Logger
	next sauerkraut.Emitter
}

var _ sauerkraut.Emitter = &Emitter{}

// New creates a tracing emitter logging to log and forwarding to next.
// next may be nil.
func New(log zerolog.Logger, next sauerkraut.Emitter) *Emitter {
	return &Emitter{log: log, next: next}
}

func (e *Emitter) Primitive(v any, tag sauerkraut.PrimitiveTag, elided bool) error {
	e.log.Trace().Str("tag", tag.String()).Bool("elided", elided).Interface("value", v).Msg("primitive")
	if e.next == nil {
		return nil
	}
	return e.next.Primitive(v, tag, elided)
}

func (e *Emitter) BeginStructure(tag sauerkraut.Tag, elided bool) error {
	e.log.Trace().Str("tag", tag.String()).Bool("elided", elided).Msg("begin structure")
	if e.next == nil {
		return nil
	}
	return e.next.BeginStructure(tag, elided)
}

func (e *Emitter) Field(name string) error {
	e.log.Trace().Str("name", name).Msg("field")
	if e.next == nil {
		return nil
	}
	return e.next.Field(name)
}

func (e *Emitter) EndStructure() error {
	e.log.Trace().Msg("end structure")
	if e.next == nil {
		return nil
	}
	return e.next.EndStructure()
}

func (e *Emitter) BeginCollection(tag sauerkraut.Tag, length int, elided bool) error {
	e.log.Trace().Str("tag", tag.String()).Int("length", length).Bool("elided", elided).Msg("begin collection")
	if e.next == nil {
		return nil
	}
	return e.next.BeginCollection(tag, length, elided)
}

func (e *Emitter) Element(index int) error {
	e.log.Trace().Int("index", index).Msg("element")
	if e.next == nil {
		return nil
	}
	return e.next.Element(index)
}

func (e *Emitter) EndCollection() error {
	e.log.Trace().Msg("end collection")
	if e.next == nil {
		return nil
	}
	return e.next.EndCollection()
}

func (e *Emitter) Flush() error {
	e.log.Trace().Msg("flush")
	if e.next == nil {
		return nil
	}
	return e.next.Flush()
}
