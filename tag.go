package sauerkraut

// Tag is the symbolic identity of a value's runtime type. The universe is
// closed: the fixed PrimitiveTag set, named structures, and collections of a
// declared element tag. Backends dispatch on canonical tags; drivers obtain
// them from their derivation layer.
type Tag interface {
	// String returns the tag's display name.
	String() string

	tag()
}

// PrimitiveTag identifies one of the fixed leaf kinds every backend must
// support directly. No backend-specific primitive kinds exist.
type PrimitiveTag int

const (
	// Nothing marks the absence of a value.
	Nothing PrimitiveTag = iota
	// Null marks a present but null value.
	Null
	// Unit marks the single-valued unit type.
	Unit
	Byte
	Char
	String
	// Short, Int and Long are 16, 32 and 64 bit signed integers.
	Short
	Int
	Long
	// Float and Double are 32 and 64 bit floating point.
	Float
	Double
	// Ref is the back-reference marker. Its payload is a RefID assigned by a
	// RefTable, never raw data. It is the sole sanctioned representation of
	// sharing and cycles.
	Ref
	ByteArray
	ShortArray
	CharArray
	IntArray
	LongArray
	BoolArray
	FloatArray
	DoubleArray
)

var primitiveNames = [...]string{
	Nothing:     "nothing",
	Null:        "null",
	Unit:        "unit",
	Byte:        "byte",
	Char:        "char",
	String:      "string",
	Short:       "short",
	Int:         "int",
	Long:        "long",
	Float:       "float",
	Double:      "double",
	Ref:         "ref",
	ByteArray:   "byte-array",
	ShortArray:  "short-array",
	CharArray:   "char-array",
	IntArray:    "int-array",
	LongArray:   "long-array",
	BoolArray:   "bool-array",
	FloatArray:  "float-array",
	DoubleArray: "double-array",
}

func (t PrimitiveTag) String() string {
	if !t.IsValid() {
		return "invalid"
	}
	return primitiveNames[t]
}

func (PrimitiveTag) tag() {}

// IsValid reports whether t is a member of the closed primitive set.
func (t PrimitiveTag) IsValid() bool {
	return t >= Nothing && t <= DoubleArray
}

// Payloadless reports whether t carries no payload on the wire.
func (t PrimitiveTag) Payloadless() bool {
	return t == Nothing || t == Null || t == Unit
}

// StructTag identifies a named structure type. Structure tags must be added
// to a TagRegistry before entries carrying them are begun.
type StructTag struct {
	Name string
}

func (t StructTag) String() string { return t.Name }

func (StructTag) tag() {}

// CollectionTag identifies a homogeneous collection of Element values. The
// declared element tag is what makes element tag elision possible.
type CollectionTag struct {
	Name    string
	Element Tag
}

func (t CollectionTag) String() string {
	if t.Element == nil {
		return t.Name
	}
	return t.Name + "[" + t.Element.String() + "]"
}

func (CollectionTag) tag() {}

// Context describes the structural position surrounding an entry for tag
// elision decisions. Declared is the tag the position statically determines,
// or nil when nothing is declared (for example a field position, which
// carries no static type information here).
type Context struct {
	Declared Tag
}

// TagRegistry holds the recognized structural universe and answers the two
// pure tag questions: canonicalization and elision eligibility. Primitive
// tags are always recognized; structure tags must be registered first.
type TagRegistry struct {
	structs map[string]StructTag
}

// NewTagRegistry returns a registry recognizing only the primitive universe.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{structs: map[string]StructTag{}}
}

// Register adds a structure tag to the recognized universe. Registering the
// same name twice is a no-op.
func (r *TagRegistry) Register(tag StructTag) {
	r.structs[tag.Name] = tag
}

// Known reports whether tag is inside the recognized primitive/structural
// universe. Collections are known when their element tag is.
func (r *TagRegistry) Known(tag Tag) bool {
	switch t := tag.(type) {
	case PrimitiveTag:
		return t.IsValid()
	case StructTag:
		_, ok := r.structs[t.Name]
		return ok
	case CollectionTag:
		return t.Element != nil && r.Known(t.Element)
	}
	return false
}

// Canonical maps equivalent tag representations to one identifier for
// backend dispatch. A collection of a scalar primitive canonicalizes to the
// matching homogeneous array tag; everything else is already canonical.
func (r *TagRegistry) Canonical(tag Tag) Tag {
	ct, ok := tag.(CollectionTag)
	if !ok || ct.Element == nil {
		return tag
	}
	elem, ok := r.Canonical(ct.Element).(PrimitiveTag)
	if !ok {
		return tag
	}
	switch elem {
	case Byte:
		return ByteArray
	case Short:
		return ShortArray
	case Char:
		return CharArray
	case Int:
		return IntArray
	case Long:
		return LongArray
	case Float:
		return FloatArray
	case Double:
		return DoubleArray
	}
	return tag
}

// CanElide reports whether an entry's tag may be omitted from the serialized
// form. Elision is legal only when the surrounding context already declares
// a tag that canonicalizes to the same identifier, so an unpickler can infer
// it without reading it.
func (r *TagRegistry) CanElide(tag Tag, ctx Context) bool {
	if tag == nil || ctx.Declared == nil {
		return false
	}
	return r.Canonical(tag) == r.Canonical(ctx.Declared)
}
