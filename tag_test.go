package sauerkraut

import "testing"

func TestPrimitiveTagNames(t *testing.T) {
	tests := []struct {
		tag  PrimitiveTag
		name string
	}{
		{Nothing, "nothing"},
		{Null, "null"},
		{Unit, "unit"},
		{Byte, "byte"},
		{Char, "char"},
		{String, "string"},
		{Short, "short"},
		{Int, "int"},
		{Long, "long"},
		{Float, "float"},
		{Double, "double"},
		{Ref, "ref"},
		{ByteArray, "byte-array"},
		{DoubleArray, "double-array"},
	}
	for _, tt := range tests {
		if tt.tag.String() != tt.name {
			t.Errorf("Expected %q, got %q", tt.name, tt.tag.String())
		}
	}

	if PrimitiveTag(-1).String() != "invalid" {
		t.Errorf("Expected 'invalid' for out of range tag")
	}
}

func TestRegistryKnown(t *testing.T) {
	registry := NewTagRegistry()

	if !registry.Known(Int) {
		t.Errorf("Expected primitive tags to always be known")
	}
	if registry.Known(PrimitiveTag(99)) {
		t.Errorf("Expected out of range primitive to be unknown")
	}
	if registry.Known(StructTag{Name: "Pet"}) {
		t.Errorf("Expected unregistered struct to be unknown")
	}

	registry.Register(StructTag{Name: "Pet"})
	if !registry.Known(StructTag{Name: "Pet"}) {
		t.Errorf("Expected registered struct to be known")
	}

	if !registry.Known(CollectionTag{Name: "List", Element: StructTag{Name: "Pet"}}) {
		t.Errorf("Expected collection of known element to be known")
	}
	if registry.Known(CollectionTag{Name: "List", Element: StructTag{Name: "Ghost"}}) {
		t.Errorf("Expected collection of unknown element to be unknown")
	}
	if registry.Known(CollectionTag{Name: "List"}) {
		t.Errorf("Expected collection without element tag to be unknown")
	}
}

func TestRegistryCanonical(t *testing.T) {
	registry := NewTagRegistry()
	registry.Register(StructTag{Name: "Pet"})

	tests := []struct {
		name string
		in   Tag
		want Tag
	}{
		{"byte collection", CollectionTag{Name: "List", Element: Byte}, ByteArray},
		{"short collection", CollectionTag{Name: "List", Element: Short}, ShortArray},
		{"char collection", CollectionTag{Name: "List", Element: Char}, CharArray},
		{"int collection", CollectionTag{Name: "List", Element: Int}, IntArray},
		{"long collection", CollectionTag{Name: "List", Element: Long}, LongArray},
		{"float collection", CollectionTag{Name: "List", Element: Float}, FloatArray},
		{"double collection", CollectionTag{Name: "List", Element: Double}, DoubleArray},
		{"scalar stays", Int, Int},
		{"array stays", IntArray, IntArray},
		{"string collection stays", CollectionTag{Name: "List", Element: String}, CollectionTag{Name: "List", Element: String}},
		{"struct collection stays", CollectionTag{Name: "List", Element: StructTag{Name: "Pet"}}, CollectionTag{Name: "List", Element: StructTag{Name: "Pet"}}},
	}
	for _, tt := range tests {
		if got := registry.Canonical(tt.in); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestCanElide(t *testing.T) {
	registry := NewTagRegistry()
	registry.Register(StructTag{Name: "Pet"})

	tests := []struct {
		name string
		tag  Tag
		ctx  Context
		want bool
	}{
		{"no declared context", Int, Context{}, false},
		{"declared match", Int, Context{Declared: Int}, true},
		{"declared mismatch", String, Context{Declared: Int}, false},
		{"struct match", StructTag{Name: "Pet"}, Context{Declared: StructTag{Name: "Pet"}}, true},
		{"canonical match", CollectionTag{Name: "List", Element: Int}, Context{Declared: IntArray}, true},
		{"nil tag", nil, Context{Declared: Int}, false},
	}
	for _, tt := range tests {
		if got := registry.CanElide(tt.tag, tt.ctx); got != tt.want {
			t.Errorf("%s: expected %t, got %t", tt.name, tt.want, got)
		}
	}
}

func TestCollectionTagString(t *testing.T) {
	tag := CollectionTag{Name: "List", Element: Int}
	if tag.String() != "List[int]" {
		t.Errorf("Expected 'List[int]', got %q", tag.String())
	}
	bare := CollectionTag{Name: "List"}
	if bare.String() != "List" {
		t.Errorf("Expected 'List', got %q", bare.String())
	}
}
