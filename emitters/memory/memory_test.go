package memory

import (
	"testing"

	"github.com/Spread0x/sauerkraut"
)

func primitiveEntry(v any, tag sauerkraut.PrimitiveTag) sauerkraut.WriteFunc {
	return func(w *sauerkraut.Writer) error {
		tok, err := w.BeginEntry(v, tag)
		if err != nil {
			return err
		}
		if err := w.PutPrimitive(v, tag); err != nil {
			return err
		}
		return w.EndEntry(tok)
	}
}

func TestStructureTree(t *testing.T) {
	pet := sauerkraut.StructTag{Name: "Pet"}
	registry := sauerkraut.NewTagRegistry()
	registry.Register(pet)

	emitter := New()
	w := sauerkraut.NewWriter(emitter, sauerkraut.WithRegistry(registry))

	tok, err := w.BeginEntry(nil, pet)
	if err != nil {
		t.Fatalf("BeginEntry() failed: %v", err)
	}
	if _, err := w.PutField("name", primitiveEntry("rex", sauerkraut.String)); err != nil {
		t.Fatalf("PutField(name) failed: %v", err)
	}
	if _, err := w.PutField("age", primitiveEntry(int32(3), sauerkraut.Int)); err != nil {
		t.Fatalf("PutField(age) failed: %v", err)
	}
	if err := w.EndEntry(tok); err != nil {
		t.Fatalf("EndEntry() failed: %v", err)
	}

	roots := emitter.Roots()
	if len(roots) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(roots))
	}
	s, ok := roots[0].(*Structure)
	if !ok {
		t.Fatalf("Expected a structure root, got %T", roots[0])
	}
	if s.Tag != pet {
		t.Errorf("Expected tag %v, got %v", pet, s.Tag)
	}
	if len(s.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(s.Fields))
	}
	if s.Fields[0].Name != "name" || s.Fields[1].Name != "age" {
		t.Errorf("Expected field order [name age], got [%s %s]", s.Fields[0].Name, s.Fields[1].Name)
	}
	name, ok := s.Fields[0].Value.(*Primitive)
	if !ok || name.Value != "rex" || name.Tag != sauerkraut.String {
		t.Errorf("Expected name field 'rex' string, got %#v", s.Fields[0].Value)
	}
}

func TestCollectionTree(t *testing.T) {
	tag := sauerkraut.CollectionTag{Name: "List", Element: sauerkraut.Int}
	emitter := New()
	w := sauerkraut.NewWriter(emitter)

	tok, err := w.BeginEntry(nil, tag)
	if err != nil {
		t.Fatalf("BeginEntry() failed: %v", err)
	}
	ctok, err := w.BeginCollection(3)
	if err != nil {
		t.Fatalf("BeginCollection() failed: %v", err)
	}
	for _, v := range []int32{1, 2, 3} {
		if _, err := w.PutElement(primitiveEntry(v, sauerkraut.Int)); err != nil {
			t.Fatalf("PutElement() failed: %v", err)
		}
	}
	if err := w.EndCollection(ctok); err != nil {
		t.Fatalf("EndCollection() failed: %v", err)
	}
	if err := w.EndEntry(tok); err != nil {
		t.Fatalf("EndEntry() failed: %v", err)
	}

	c, ok := emitter.Roots()[0].(*Collection)
	if !ok {
		t.Fatalf("Expected a collection root, got %T", emitter.Roots()[0])
	}
	if c.Length != 3 || len(c.Elements) != 3 {
		t.Fatalf("Expected 3 declared and 3 written elements, got %d and %d", c.Length, len(c.Elements))
	}
	for i, v := range []int32{1, 2, 3} {
		p, ok := c.Elements[i].(*Primitive)
		if !ok || p.Value != v {
			t.Errorf("Element %d: expected %d, got %#v", i, v, c.Elements[i])
		}
		if !p.Elided {
			t.Errorf("Element %d: expected elided tag inside a declared int collection", i)
		}
	}
}

type listNode struct {
	value int32
	next  *listNode
}

func writeListNode(n *listNode, tag sauerkraut.StructTag) sauerkraut.WriteFunc {
	return func(w *sauerkraut.Writer) error {
		if n == nil {
			tok, err := w.BeginEntry(nil, sauerkraut.Null)
			if err != nil {
				return err
			}
			return w.EndEntry(tok)
		}
		return w.PutShared(n, tag, func(w *sauerkraut.Writer) error {
			if _, err := w.PutField("value", primitiveEntry(n.value, sauerkraut.Int)); err != nil {
				return err
			}
			_, err := w.PutField("next", writeListNode(n.next, tag))
			return err
		})
	}
}

func TestCycleProducesRefNode(t *testing.T) {
	tag := sauerkraut.StructTag{Name: "ListNode"}
	registry := sauerkraut.NewTagRegistry()
	registry.Register(tag)

	emitter := New()
	w := sauerkraut.NewWriter(emitter, sauerkraut.WithRegistry(registry))

	head := &listNode{value: 1}
	head.next = head

	if err := writeListNode(head, tag)(w); err != nil {
		t.Fatalf("Writing cyclic list failed: %v", err)
	}

	s, ok := emitter.Roots()[0].(*Structure)
	if !ok {
		t.Fatalf("Expected a structure root, got %T", emitter.Roots()[0])
	}
	ref, ok := s.Fields[1].Value.(*Primitive)
	if !ok || ref.Tag != sauerkraut.Ref {
		t.Fatalf("Expected the back-edge to be a ref primitive, got %#v", s.Fields[1].Value)
	}
	id, ok := ref.Value.(sauerkraut.RefID)
	if !ok || id == 0 {
		t.Errorf("Expected a non-zero RefID payload, got %#v", ref.Value)
	}
}

func TestMultipleRootsAndFlush(t *testing.T) {
	emitter := New()
	w := sauerkraut.NewWriter(emitter)

	if err := primitiveEntry("one", sauerkraut.String)(w); err != nil {
		t.Fatalf("First entry failed: %v", err)
	}
	if err := primitiveEntry("two", sauerkraut.String)(w); err != nil {
		t.Fatalf("Second entry failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}

	if len(emitter.Roots()) != 2 {
		t.Errorf("Expected 2 roots, got %d", len(emitter.Roots()))
	}
	if emitter.Flushes() != 1 {
		t.Errorf("Expected 1 flush, got %d", emitter.Flushes())
	}
}
