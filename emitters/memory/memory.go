// Package memory provides an in-memory tree backend. It renders the
// validated call sequence into plain nodes, which makes it the reference
// backend for conformance tests and a convenient staging form for drivers
// that post-process pickles before encoding.
package memory

import (
	"errors"

	"github.com/Spread0x/sauerkraut"
)

// Node is one pickled value in the tree.
type Node interface {
	node()
}

// Primitive is a leaf node. For the ref kind Value holds a sauerkraut.RefID.
type Primitive struct {
	Value  any
	Tag    sauerkraut.PrimitiveTag
	Elided bool
}

func (*Primitive) node() {}

// Field is one named slot of a Structure, in write order.
type Field struct {
	Name  string
	Value Node
}

// Structure is a structure node with fields in exactly the order they were
// written.
type Structure struct {
	Tag    sauerkraut.Tag
	Elided bool
	Fields []Field
}

func (*Structure) node() {}

// Collection is a collection node holding its declared length and elements.
type Collection struct {
	Tag      sauerkraut.Tag
	Length   int
	Elided   bool
	Elements []Node
}

func (*Collection) node() {}

// Emitter accumulates nodes. Each top-level entry becomes one root.
type Emitter struct {
	roots   []Node
	stack   []Node
	flushes int
}

var _ sauerkraut.Emitter = &Emitter{}

// New creates an empty tree emitter.
func New() *Emitter {
	return &Emitter{}
}

// Roots returns the completed top-level nodes in write order.
func (e *Emitter) Roots() []Node {
	return e.roots
}

// Flushes returns how many times Flush was called.
func (e *Emitter) Flushes() int {
	return e.flushes
}

func (e *Emitter) place(n Node) error {
	if len(e.stack) == 0 {
		e.roots = append(e.roots, n)
		return nil
	}
	switch parent := e.stack[len(e.stack)-1].(type) {
	case *Structure:
		if len(parent.Fields) == 0 {
			return errors.New("memory: value before first field name")
		}
		parent.Fields[len(parent.Fields)-1].Value = n
	case *Collection:
		parent.Elements = append(parent.Elements, n)
	}
	return nil
}

func (e *Emitter) Primitive(v any, tag sauerkraut.PrimitiveTag, elided bool) error {
	return e.place(&Primitive{Value: v, Tag: tag, Elided: elided})
}

func (e *Emitter) BeginStructure(tag sauerkraut.Tag, elided bool) error {
	s := &Structure{Tag: tag, Elided: elided}
	if err := e.place(s); err != nil {
		return err
	}
	e.stack = append(e.stack, s)
	return nil
}

func (e *Emitter) Field(name string) error {
	s, ok := e.top().(*Structure)
	if !ok {
		return errors.New("memory: field outside a structure")
	}
	s.Fields = append(s.Fields, Field{Name: name})
	return nil
}

func (e *Emitter) EndStructure() error {
	if _, ok := e.top().(*Structure); !ok {
		return errors.New("memory: end of structure that is not open")
	}
	e.stack = e.stack[:len(e.stack)-1]
	return nil
}

func (e *Emitter) BeginCollection(tag sauerkraut.Tag, length int, elided bool) error {
	c := &Collection{Tag: tag, Length: length, Elided: elided, Elements: make([]Node, 0, length)}
	if err := e.place(c); err != nil {
		return err
	}
	e.stack = append(e.stack, c)
	return nil
}

func (e *Emitter) Element(index int) error {
	c, ok := e.top().(*Collection)
	if !ok {
		return errors.New("memory: element outside a collection")
	}
	if index != len(c.Elements) {
		return errors.New("memory: element out of order")
	}
	return nil
}

func (e *Emitter) EndCollection() error {
	if _, ok := e.top().(*Collection); !ok {
		return errors.New("memory: end of collection that is not open")
	}
	e.stack = e.stack[:len(e.stack)-1]
	return nil
}

func (e *Emitter) Flush() error {
	e.flushes++
	return nil
}

func (e *Emitter) top() Node {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}
