// Package wire provides a compact binary backend built on the varint and
// fixed-width primitives of google.golang.org/protobuf/encoding/protowire.
//
// Stream layout, per entry:
//
//	primitive   kind varint, then the payload. Elided primitives omit the
//	            kind varint entirely; the surrounding declared type stands
//	            in for it on read-back.
//	structure   0x20, tag name as length-prefixed bytes (empty when elided),
//	            varint body length, body. The body is the field sequence,
//	            each field a length-prefixed name followed by its entry.
//	collection  0x21, tag name as length-prefixed bytes (empty when elided),
//	            varint element count, the elements inline.
//
// Payloads: signed integers are zigzag varints, char is a plain varint code
// point, float is fixed32 and double fixed64 of the IEEE bits, string and
// byte arrays are length-prefixed, the remaining homogeneous arrays are a
// varint count followed by packed element payloads. Nothing, null and unit
// carry no payload. Ref carries the varint id.
//
// Structure bodies are buffered so the body length can be emitted first;
// collections need no buffering because their length is declared up front.
package wire

import (
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Spread0x/sauerkraut"
)

const (
	kindStructure  = 0x20
	kindCollection = 0x21
)

// Emitter implements sauerkraut.Emitter producing the wire format.
type Emitter struct {
	w     io.Writer
	buf   []byte
	stack [][]byte
}

var _ sauerkraut.Emitter = &Emitter{}

// New creates an emitter writing to w. Output accumulates until Flush.
func New(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) cur() *[]byte {
	if len(e.stack) == 0 {
		return &e.buf
	}
	return &e.stack[len(e.stack)-1]
}

func (e *Emitter) BeginStructure(tag sauerkraut.Tag, elided bool) error {
	b := e.cur()
	*b = protowire.AppendVarint(*b, kindStructure)
	name := ""
	if !elided {
		name = tag.String()
	}
	*b = protowire.AppendString(*b, name)
	e.stack = append(e.stack, nil)
	return nil
}

func (e *Emitter) Field(name string) error {
	if len(e.stack) == 0 {
		return fmt.Errorf("wire: field %q outside a structure", name)
	}
	b := e.cur()
	*b = protowire.AppendString(*b, name)
	return nil
}

func (e *Emitter) EndStructure() error {
	if len(e.stack) == 0 {
		return fmt.Errorf("wire: end of structure that is not open")
	}
	body := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	b := e.cur()
	*b = protowire.AppendBytes(*b, body)
	return nil
}

func (e *Emitter) BeginCollection(tag sauerkraut.Tag, length int, elided bool) error {
	b := e.cur()
	*b = protowire.AppendVarint(*b, kindCollection)
	name := ""
	if !elided {
		name = tag.String()
	}
	*b = protowire.AppendString(*b, name)
	*b = protowire.AppendVarint(*b, uint64(length))
	return nil
}

func (e *Emitter) Element(index int) error {
	return nil
}

func (e *Emitter) EndCollection() error {
	return nil
}

func (e *Emitter) Primitive(v any, tag sauerkraut.PrimitiveTag, elided bool) error {
	b := e.cur()
	if !elided {
		*b = protowire.AppendVarint(*b, uint64(tag))
	}
	switch tag {
	case sauerkraut.Nothing, sauerkraut.Null, sauerkraut.Unit:
		return nil
	case sauerkraut.Byte:
		n, err := asInt64(v, tag)
		if err != nil {
			return err
		}
		*b = append(*b, byte(n))
		return nil
	case sauerkraut.Char:
		r, ok := v.(rune)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(uint32(r)))
		return nil
	case sauerkraut.String:
		s, ok := v.(string)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendString(*b, s)
		return nil
	case sauerkraut.Short, sauerkraut.Int, sauerkraut.Long:
		n, err := asInt64(v, tag)
		if err != nil {
			return err
		}
		*b = protowire.AppendVarint(*b, protowire.EncodeZigZag(n))
		return nil
	case sauerkraut.Float:
		f, ok := v.(float32)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendFixed32(*b, math.Float32bits(f))
		return nil
	case sauerkraut.Double:
		f, ok := v.(float64)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendFixed64(*b, math.Float64bits(f))
		return nil
	case sauerkraut.Ref:
		id, ok := v.(sauerkraut.RefID)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(id))
		return nil
	case sauerkraut.ByteArray:
		bs, ok := v.([]byte)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendBytes(*b, bs)
		return nil
	}
	return e.primitiveArray(b, v, tag)
}

func (e *Emitter) primitiveArray(b *[]byte, v any, tag sauerkraut.PrimitiveTag) error {
	switch tag {
	case sauerkraut.ShortArray:
		vs, ok := v.([]int16)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, n := range vs {
			*b = protowire.AppendVarint(*b, protowire.EncodeZigZag(int64(n)))
		}
	case sauerkraut.CharArray:
		vs, ok := v.([]rune)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, r := range vs {
			*b = protowire.AppendVarint(*b, uint64(uint32(r)))
		}
	case sauerkraut.IntArray:
		vs, ok := v.([]int32)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, n := range vs {
			*b = protowire.AppendVarint(*b, protowire.EncodeZigZag(int64(n)))
		}
	case sauerkraut.LongArray:
		vs, ok := v.([]int64)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, n := range vs {
			*b = protowire.AppendVarint(*b, protowire.EncodeZigZag(n))
		}
	case sauerkraut.BoolArray:
		vs, ok := v.([]bool)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, set := range vs {
			if set {
				*b = append(*b, 1)
			} else {
				*b = append(*b, 0)
			}
		}
	case sauerkraut.FloatArray:
		vs, ok := v.([]float32)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, f := range vs {
			*b = protowire.AppendFixed32(*b, math.Float32bits(f))
		}
	case sauerkraut.DoubleArray:
		vs, ok := v.([]float64)
		if !ok {
			return typeErr(v, tag)
		}
		*b = protowire.AppendVarint(*b, uint64(len(vs)))
		for _, f := range vs {
			*b = protowire.AppendFixed64(*b, math.Float64bits(f))
		}
	default:
		return fmt.Errorf("wire: unsupported primitive tag %s", tag)
	}
	return nil
}

// Flush writes the accumulated stream to the destination and resets the
// buffer. If the destination batches per pickle it is flushed too.
func (e *Emitter) Flush() error {
	if len(e.stack) != 0 {
		return fmt.Errorf("wire: flush with a structure still open")
	}
	if len(e.buf) > 0 {
		if _, err := e.w.Write(e.buf); err != nil {
			return err
		}
		e.buf = e.buf[:0]
	}
	if f, ok := e.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func asInt64(v any, tag sauerkraut.PrimitiveTag) (int64, error) {
	switch n := v.(type) {
	case int8:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	}
	return 0, typeErr(v, tag)
}

func typeErr(v any, tag sauerkraut.PrimitiveTag) error {
	return fmt.Errorf("wire: %s primitive has Go type %T", tag, v)
}
