// Package msgpack provides a MessagePack backend built on the streaming
// encoder from github.com/vmihailenco/msgpack/v5.
//
// Structures become maps and collections become arrays. MessagePack map
// headers carry the entry count, which the protocol only knows once the
// structure ends, so each open structure buffers its body and the header is
// written when it closes. Leaf kinds are self-describing in MessagePack, so
// primitive tag elision costs nothing either way; structure and collection
// tags are written only when not elided — structures gain a leading "!type"
// key, collections are wrapped in a two element array of [tag, elements].
// Ref entries encode as ["!ref", id].
package msgpack

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Spread0x/sauerkraut"
)

type layer struct {
	buf    bytes.Buffer
	enc    *msgpack.Encoder
	fields int
}

// Emitter implements sauerkraut.Emitter producing MessagePack.
type Emitter struct {
	out    io.Writer
	enc    *msgpack.Encoder
	layers []*layer
}

var _ sauerkraut.Emitter = &Emitter{}

// New creates an emitter writing MessagePack to w.
func New(w io.Writer) *Emitter {
	return &Emitter{out: w, enc: msgpack.NewEncoder(w)}
}

// cur returns the encoder for the innermost open structure, or the stream
// encoder when none is open.
func (e *Emitter) cur() *msgpack.Encoder {
	if len(e.layers) == 0 {
		return e.enc
	}
	return e.layers[len(e.layers)-1].enc
}

func (e *Emitter) BeginStructure(tag sauerkraut.Tag, elided bool) error {
	l := &layer{}
	l.enc = msgpack.NewEncoder(&l.buf)
	e.layers = append(e.layers, l)
	if elided {
		return nil
	}
	l.fields++
	if err := l.enc.EncodeString("!type"); err != nil {
		return err
	}
	return l.enc.EncodeString(tag.String())
}

func (e *Emitter) Field(name string) error {
	if len(e.layers) == 0 {
		return fmt.Errorf("msgpack: field %q outside a structure", name)
	}
	l := e.layers[len(e.layers)-1]
	l.fields++
	return l.enc.EncodeString(name)
}

func (e *Emitter) EndStructure() error {
	if len(e.layers) == 0 {
		return fmt.Errorf("msgpack: end of structure that is not open")
	}
	l := e.layers[len(e.layers)-1]
	e.layers = e.layers[:len(e.layers)-1]
	if err := e.cur().EncodeMapLen(l.fields); err != nil {
		return err
	}
	_, err := e.curWriter().Write(l.buf.Bytes())
	return err
}

// curWriter returns the raw byte destination behind cur. The msgpack encoder
// streams straight through to its writer, so completed structure bodies can
// be appended directly.
func (e *Emitter) curWriter() io.Writer {
	if len(e.layers) == 0 {
		return e.out
	}
	return &e.layers[len(e.layers)-1].buf
}

func (e *Emitter) BeginCollection(tag sauerkraut.Tag, length int, elided bool) error {
	enc := e.cur()
	if !elided {
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString(tag.String()); err != nil {
			return err
		}
	}
	return enc.EncodeArrayLen(length)
}

func (e *Emitter) Element(index int) error {
	return nil
}

func (e *Emitter) EndCollection() error {
	return nil
}

func (e *Emitter) Primitive(v any, tag sauerkraut.PrimitiveTag, elided bool) error {
	enc := e.cur()
	switch tag {
	case sauerkraut.Nothing, sauerkraut.Null, sauerkraut.Unit:
		return enc.EncodeNil()
	case sauerkraut.Byte, sauerkraut.Char, sauerkraut.Short, sauerkraut.Int, sauerkraut.Long:
		n, err := asInt64(v, tag)
		if err != nil {
			return err
		}
		return enc.EncodeInt(n)
	case sauerkraut.String:
		s, ok := v.(string)
		if !ok {
			return typeErr(v, tag)
		}
		return enc.EncodeString(s)
	case sauerkraut.Float:
		f, ok := v.(float32)
		if !ok {
			return typeErr(v, tag)
		}
		return enc.EncodeFloat32(f)
	case sauerkraut.Double:
		f, ok := v.(float64)
		if !ok {
			return typeErr(v, tag)
		}
		return enc.EncodeFloat64(f)
	case sauerkraut.Ref:
		id, ok := v.(sauerkraut.RefID)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString("!ref"); err != nil {
			return err
		}
		return enc.EncodeUint(uint64(id))
	case sauerkraut.ByteArray:
		b, ok := v.([]byte)
		if !ok {
			return typeErr(v, tag)
		}
		return enc.EncodeBytes(b)
	default:
		return e.primitiveArray(enc, v, tag)
	}
}

func (e *Emitter) primitiveArray(enc *msgpack.Encoder, v any, tag sauerkraut.PrimitiveTag) error {
	switch tag {
	case sauerkraut.ShortArray:
		vs, ok := v.([]int16)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, n := range vs {
			if err := enc.EncodeInt(int64(n)); err != nil {
				return err
			}
		}
	case sauerkraut.CharArray:
		vs, ok := v.([]rune)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, n := range vs {
			if err := enc.EncodeInt(int64(n)); err != nil {
				return err
			}
		}
	case sauerkraut.IntArray:
		vs, ok := v.([]int32)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, n := range vs {
			if err := enc.EncodeInt(int64(n)); err != nil {
				return err
			}
		}
	case sauerkraut.LongArray:
		vs, ok := v.([]int64)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, n := range vs {
			if err := enc.EncodeInt(n); err != nil {
				return err
			}
		}
	case sauerkraut.BoolArray:
		vs, ok := v.([]bool)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, b := range vs {
			if err := enc.EncodeBool(b); err != nil {
				return err
			}
		}
	case sauerkraut.FloatArray:
		vs, ok := v.([]float32)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, f := range vs {
			if err := enc.EncodeFloat32(f); err != nil {
				return err
			}
		}
	case sauerkraut.DoubleArray:
		vs, ok := v.([]float64)
		if !ok {
			return typeErr(v, tag)
		}
		if err := enc.EncodeArrayLen(len(vs)); err != nil {
			return err
		}
		for _, f := range vs {
			if err := enc.EncodeFloat64(f); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("msgpack: unsupported primitive tag %s", tag)
	}
	return nil
}

func (e *Emitter) Flush() error {
	if f, ok := e.out.(interface{ Flush() error }); ok {
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
	return fmt.Errorf("msgpack: %s primitive has Go type %T", tag, v)
}
