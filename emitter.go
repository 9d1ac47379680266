package sauerkraut

// Emitter is the contract a format-specific backend implements: binary, text,
// or an in-memory tree. The Writer guarantees every sequence an emitter sees
// is well formed — begins and ends balance, fields arrive only between
// BeginStructure and EndStructure, elements only between BeginCollection and
// EndCollection, and collection lengths arrive before any element. Emitters
// are responsible only for encoding; any error they return propagates to the
// driver unchanged.
type Emitter interface {
	// Primitive writes one leaf value of the given kind. For Ref the value is
	// a RefID. elided is true when the surrounding context already determines
	// the tag and the format may omit it.
	Primitive(v any, tag PrimitiveTag, elided bool) error

	// BeginStructure opens a structure entry. Field order as issued is the
	// only ordering contract; formats needing a field count must buffer until
	// EndStructure.
	BeginStructure(tag Tag, elided bool) error

	// Field names the next nested entry. The entry's own emitter calls follow
	// before the next Field or EndStructure.
	Field(name string) error

	// EndStructure closes the structure opened by the matching BeginStructure.
	EndStructure() error

	// BeginCollection opens a collection entry of exactly length elements.
	BeginCollection(tag Tag, length int, elided bool) error

	// Element introduces the next element, with its zero-based index. The
	// element entry's emitter calls follow.
	Element(index int) error

	// EndCollection closes the collection opened by the matching
	// BeginCollection.
	EndCollection() error

	// Flush pushes any buffered output to the destination. Called only at
	// top-level boundaries.
	Flush() error
}
