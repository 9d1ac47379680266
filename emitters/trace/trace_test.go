package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Spread0x/sauerkraut"
	"github.com/Spread0x/sauerkraut/emitters/memory"
)

func TestLogsEventSequence(t *testing.T) {
	pet := sauerkraut.StructTag{Name: "Pet"}
	registry := sauerkraut.NewTagRegistry()
	registry.Register(pet)

	var logged bytes.Buffer
	logger := zerolog.New(&logged)
	w := sauerkraut.NewWriter(New(logger, nil), sauerkraut.WithRegistry(registry))

	tok, err := w.BeginEntry(nil, pet)
	if err != nil {
		t.Fatalf("BeginEntry() failed: %v", err)
	}
	_, err = w.PutField("name", func(w *sauerkraut.Writer) error {
		tok, err := w.BeginEntry("rex", sauerkraut.String)
		if err != nil {
			return err
		}
		if err := w.PutPrimitive("rex", sauerkraut.String); err != nil {
			return err
		}
		return w.EndEntry(tok)
	})
	if err != nil {
		t.Fatalf("PutField() failed: %v", err)
	}
	if err := w.EndEntry(tok); err != nil {
		t.Fatalf("EndEntry() failed: %v", err)
	}

	out := logged.String()
	for _, want := range []string{"begin structure", `"name":"name"`, "primitive", `"value":"rex"`, "end structure"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
}

func TestForwardsToInnerEmitter(t *testing.T) {
	inner := memory.New()
	logger := zerolog.New(bytes.NewBuffer(nil))
	w := sauerkraut.NewWriter(New(logger, inner))

	tok, err := w.BeginEntry("hi", sauerkraut.String)
	if err != nil {
		t.Fatalf("BeginEntry() failed: %v", err)
	}
	if err := w.PutPrimitive("hi", sauerkraut.String); err != nil {
		t.Fatalf("PutPrimitive() failed: %v", err)
	}
	if err := w.EndEntry(tok); err != nil {
		t.Fatalf("EndEntry() failed: %v", err)
	}

	if len(inner.Roots()) != 1 {
		t.Fatalf("Expected 1 root forwarded, got %d", len(inner.Roots()))
	}
	p, ok := inner.Roots()[0].(*memory.Primitive)
	if !ok || p.Value != "hi" {
		t.Errorf("Expected forwarded primitive 'hi', got %#v", inner.Roots()[0])
	}
}
