// Package jsontext provides a human-readable JSON backend. It is meant for
// debugging and golden files rather than compactness.
//
// Structures become objects, with a leading "!type" member when the tag is
// not elided. Collections become arrays, wrapped as [tag, elements] when the
// tag is not elided. Ref entries become {"!ref": id}. Byte arrays take
// encoding/json's base64 string form. Each top-level entry is written on its
// own line.
package jsontext

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Spread0x/sauerkraut"
)

type state struct {
	object  bool
	count   int
	wrapped bool
}

// Emitter implements sauerkraut.Emitter producing JSON text.
type Emitter struct {
	w     io.Writer
	stack []state
	roots int
}

var _ sauerkraut.Emitter = &Emitter{}

// New creates an emitter writing JSON to w.
func New(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) write(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *Emitter) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

// sep separates top-level entries with newlines.
func (e *Emitter) sep() error {
	if len(e.stack) != 0 {
		return nil
	}
	e.roots++
	if e.roots > 1 {
		return e.write("\n")
	}
	return nil
}

func (e *Emitter) BeginStructure(tag sauerkraut.Tag, elided bool) error {
	if err := e.sep(); err != nil {
		return err
	}
	if err := e.write("{"); err != nil {
		return err
	}
	s := state{object: true}
	if !elided {
		s.count = 1
		if err := e.write(`"!type":`); err != nil {
			return err
		}
		if err := e.writeJSON(tag.String()); err != nil {
			return err
		}
	}
	e.stack = append(e.stack, s)
	return nil
}

func (e *Emitter) Field(name string) error {
	if len(e.stack) == 0 || !e.stack[len(e.stack)-1].object {
		return fmt.Errorf("jsontext: field %q outside an object", name)
	}
	s := &e.stack[len(e.stack)-1]
	if s.count > 0 {
		if err := e.write(","); err != nil {
			return err
		}
	}
	s.count++
	if err := e.writeJSON(name); err != nil {
		return err
	}
	return e.write(":")
}

func (e *Emitter) EndStructure() error {
	if len(e.stack) == 0 || !e.stack[len(e.stack)-1].object {
		return fmt.Errorf("jsontext: end of object that is not open")
	}
	e.stack = e.stack[:len(e.stack)-1]
	return e.write("}")
}

func (e *Emitter) BeginCollection(tag sauerkraut.Tag, length int, elided bool) error {
	if err := e.sep(); err != nil {
		return err
	}
	if !elided {
		if err := e.write("["); err != nil {
			return err
		}
		if err := e.writeJSON(tag.String()); err != nil {
			return err
		}
		if err := e.write(","); err != nil {
			return err
		}
	}
	if err := e.write("["); err != nil {
		return err
	}
	e.stack = append(e.stack, state{wrapped: !elided})
	return nil
}

func (e *Emitter) Element(index int) error {
	if len(e.stack) == 0 || e.stack[len(e.stack)-1].object {
		return fmt.Errorf("jsontext: element outside an array")
	}
	if index > 0 {
		return e.write(",")
	}
	return nil
}

func (e *Emitter) EndCollection() error {
	if len(e.stack) == 0 || e.stack[len(e.stack)-1].object {
		return fmt.Errorf("jsontext: end of array that is not open")
	}
	wrapped := e.stack[len(e.stack)-1].wrapped
	e.stack = e.stack[:len(e.stack)-1]
	if err := e.write("]"); err != nil {
		return err
	}
	if wrapped {
		return e.write("]")
	}
	return nil
}

func (e *Emitter) Primitive(v any, tag sauerkraut.PrimitiveTag, elided bool) error {
	if err := e.sep(); err != nil {
		return err
	}
	switch tag {
	case sauerkraut.Nothing, sauerkraut.Null, sauerkraut.Unit:
		return e.write("null")
	case sauerkraut.Ref:
		id, ok := v.(sauerkraut.RefID)
		if !ok {
			return fmt.Errorf("jsontext: ref primitive has Go type %T", v)
		}
		return e.write(fmt.Sprintf(`{"!ref":%d}`, id))
	case sauerkraut.Char:
		r, ok := v.(rune)
		if !ok {
			return fmt.Errorf("jsontext: char primitive has Go type %T", v)
		}
		return e.writeJSON(string(r))
	case sauerkraut.CharArray:
		rs, ok := v.([]rune)
		if !ok {
			return fmt.Errorf("jsontext: char-array primitive has Go type %T", v)
		}
		chars := make([]string, len(rs))
		for i, r := range rs {
			chars[i] = string(r)
		}
		return e.writeJSON(chars)
	default:
		return e.writeJSON(v)
	}
}

func (e *Emitter) Flush() error {
	if f, ok := e.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
