package sauerkraut

import "fmt"

// Mode distinguishes a real write pass from a size-estimation pass. Backends
// that precompute sizes run the same producer callbacks twice, once in each
// mode; callers must not assume a callback's side effects execute exactly
// once.
type Mode int

const (
	// Commit is a real write pass.
	Commit Mode = iota
	// DryRun is an estimation pass whose reference observations are discarded.
	DryRun
)

// WriteFunc produces one complete entry: exactly one BeginEntry/EndEntry
// cycle against the writer it is handed. Field and element callbacks use this
// signature; derivation machinery builds one per type.
type WriteFunc func(w *Writer) error

// EntryToken pairs a BeginEntry with its matching EndEntry.
type EntryToken struct {
	id uint64
}

// CollectionToken pairs a BeginCollection with its matching EndCollection.
type CollectionToken struct {
	id uint64
}

type frameKind int

const (
	// frameSlot awaits exactly one nested entry from a field or element
	// callback.
	frameSlot frameKind = iota
	// frameEntry is an open entry not yet resolved to a shape.
	frameEntry
	// frameStructure is an entry resolved as a structure by its first field.
	frameStructure
	// framePrimitive is an entry resolved as a leaf, awaiting EndEntry.
	framePrimitive
	// frameCollection is an open collection within an entry.
	frameCollection
	// frameDone is an entry whose collection has closed, awaiting EndEntry.
	frameDone
)

type frame struct {
	kind   frameKind
	id     uint64
	tag    Tag
	length int
	index  int
	filled bool
}

// Writer enforces the legal ordering and nesting of pickling operations and
// routes each entry to exactly one fate — primitive, structure or collection
// — before the backend sees it. A Writer is one session: it owns a frame
// stack and a RefTable, and admits one producer at a time.
type Writer struct {
	emitter  Emitter
	registry *TagRegistry
	refs     *RefTable
	mode     Mode
	frames   []frame
	nextID   uint64
}

// Option configures a Writer.
type Option func(*Writer)

// WithRegistry supplies the tag registry defining the structural universe.
func WithRegistry(r *TagRegistry) Option {
	return func(w *Writer) { w.registry = r }
}

// WithRefTable supplies the session's reference table. Useful when the
// caller needs to inspect observed identities after the session.
func WithRefTable(t *RefTable) Option {
	return func(w *Writer) { w.refs = t }
}

// NewWriter starts a pickling session against the given backend.
func NewWriter(emitter Emitter, opts ...Option) *Writer {
	w := &Writer{emitter: emitter}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = NewTagRegistry()
	}
	if w.refs == nil {
		w.refs = NewRefTable()
	}
	return w
}

// Mode returns the session's write mode.
func (w *Writer) Mode() Mode {
	return w.mode
}

// Registry returns the session's tag registry.
func (w *Writer) Registry() *TagRegistry {
	return w.registry
}

// Refs returns the session's reference table.
func (w *Writer) Refs() *RefTable {
	return w.refs
}

// DryRun derives an estimation-pass writer against a different backend,
// typically a size counter. The derived writer has a fresh frame stack and a
// clone of the reference table, so running the same producer callbacks again
// cannot pollute this session's state.
func (w *Writer) DryRun(emitter Emitter) *Writer {
	return &Writer{
		emitter:  emitter,
		registry: w.registry,
		refs:     w.refs.Clone(),
		mode:     DryRun,
	}
}

func (w *Writer) top() *frame {
	if len(w.frames) == 0 {
		return nil
	}
	return &w.frames[len(w.frames)-1]
}

func (w *Writer) pop() {
	w.frames = w.frames[:len(w.frames)-1]
	if f := w.top(); f != nil && f.kind == frameSlot {
		f.filled = true
	}
}

// declared returns the tag the surrounding context determines for the entry
// on top of the stack, or nil. Only a collection's declared element tag
// counts; field positions carry no static type here.
func (w *Writer) declared() Tag {
	n := len(w.frames)
	if n < 3 || w.frames[n-2].kind != frameSlot || w.frames[n-3].kind != frameCollection {
		return nil
	}
	if ct, ok := w.frames[n-3].tag.(CollectionTag); ok {
		return ct.Element
	}
	return nil
}

// BeginEntry opens an entry for one value. Legal at the top level or inside
// an unfilled field/element slot. The value itself is opaque to the protocol;
// only its tag matters here. Returns ErrUnknownTag when the tag is outside
// the registry's universe, ErrProtocolViolation when called out of sequence.
func (w *Writer) BeginEntry(value any, tag Tag) (EntryToken, error) {
	_ = value
	if tag == nil || !w.registry.Known(tag) {
		return EntryToken{}, violationTag(tag)
	}
	if f := w.top(); f != nil {
		if f.kind != frameSlot {
			return EntryToken{}, violationf("entry begun while the enclosing %s is still being written", kindName(f.kind))
		}
		if f.filled {
			return EntryToken{}, violationf("second entry begun in a field or element callback")
		}
	}
	w.nextID++
	w.frames = append(w.frames, frame{kind: frameEntry, id: w.nextID, tag: tag})
	return EntryToken{id: w.nextID}, nil
}

// EndEntry closes the entry opened by the matching BeginEntry. An entry
// still unresolved at this point is completed from its tag alone: a
// structure tag yields an empty structure, a payloadless primitive tag
// yields its leaf. Anything else unresolved is a violation.
func (w *Writer) EndEntry(tok EntryToken) error {
	f := w.top()
	if f == nil || f.kind == frameSlot {
		return violationf("entry ended with no entry open")
	}
	if f.kind == frameCollection {
		return violationf("entry ended with its collection still open")
	}
	if f.id != tok.id {
		return violationf("entry end does not match the innermost open entry")
	}
	switch f.kind {
	case frameEntry:
		if err := w.resolveEmpty(f); err != nil {
			return err
		}
	case frameStructure:
		if err := w.emitter.EndStructure(); err != nil {
			return err
		}
	}
	w.pop()
	return nil
}

// resolveEmpty completes an entry that saw no primitive, field or collection
// writes before EndEntry.
func (w *Writer) resolveEmpty(f *frame) error {
	elided := w.registry.CanElide(f.tag, Context{Declared: w.declared()})
	switch t := f.tag.(type) {
	case StructTag:
		if err := w.emitter.BeginStructure(t, elided); err != nil {
			return err
		}
		return w.emitter.EndStructure()
	case PrimitiveTag:
		if t.Payloadless() {
			return w.emitter.Primitive(nil, t, elided)
		}
	}
	return violationf("entry %v ended without content", f.tag)
}

// PutPrimitive resolves the open entry as a leaf of the given kind. The
// frame is then closed for structure: further PutField, BeginCollection or
// PutPrimitive calls against it fail.
func (w *Writer) PutPrimitive(value any, tag PrimitiveTag) error {
	if !tag.IsValid() {
		return violationTag(tag)
	}
	f := w.top()
	if f == nil || f.kind == frameSlot {
		return violationf("primitive written with no entry open")
	}
	if f.kind != frameEntry {
		return violationf("primitive written to an entry already resolved as a %s", kindName(f.kind))
	}
	elided := w.registry.CanElide(tag, Context{Declared: w.declared()})
	if err := w.emitter.Primitive(value, tag, elided); err != nil {
		return err
	}
	f.kind = framePrimitive
	return nil
}

// PutField writes one named field of a structure entry. The first field
// resolves the entry as a structure. fn runs against a fresh nested slot and
// must complete exactly one begin/end-entry cycle for the field's value.
// Field order is preserved exactly as issued; name uniqueness is a format
// concern and is not policed here. Returns the writer for fluent chaining.
func (w *Writer) PutField(name string, fn WriteFunc) (*Writer, error) {
	f := w.top()
	if f == nil || f.kind == frameSlot {
		return nil, violationf("field %q written with no entry open", name)
	}
	switch f.kind {
	case frameEntry:
		elided := w.registry.CanElide(f.tag, Context{Declared: w.declared()})
		if err := w.emitter.BeginStructure(f.tag, elided); err != nil {
			return nil, err
		}
		f.kind = frameStructure
	case frameStructure:
	default:
		return nil, violationf("field %q written to an entry already resolved as a %s", name, kindName(f.kind))
	}
	if err := w.emitter.Field(name); err != nil {
		return nil, err
	}
	return w.fillSlot(fn, "field "+name)
}

// BeginCollection resolves the open entry as a collection of exactly length
// elements. Only legal once per entry, before any field or primitive write.
// The declared length reaches the backend before any element so formats with
// size headers can emit them up front.
func (w *Writer) BeginCollection(length int) (CollectionToken, error) {
	f := w.top()
	if f == nil || f.kind == frameSlot {
		return CollectionToken{}, violationf("collection begun with no entry open")
	}
	if f.kind != frameEntry {
		return CollectionToken{}, violationf("collection begun on an entry already resolved as a %s", kindName(f.kind))
	}
	if length < 0 {
		return CollectionToken{}, violationf("collection begun with negative length %d", length)
	}
	elided := w.registry.CanElide(f.tag, Context{Declared: w.declared()})
	if err := w.emitter.BeginCollection(f.tag, length, elided); err != nil {
		return CollectionToken{}, err
	}
	w.nextID++
	w.frames = append(w.frames, frame{kind: frameCollection, id: w.nextID, tag: f.tag, length: length})
	return CollectionToken{id: w.nextID}, nil
}

// PutElement writes the next element of the open collection. fn must
// complete exactly one begin/end-entry cycle. Writing more elements than the
// declared length is a violation. Returns the writer for fluent chaining.
func (w *Writer) PutElement(fn WriteFunc) (*Writer, error) {
	f := w.top()
	if f == nil || f.kind != frameCollection {
		return nil, violationf("element written outside an open collection")
	}
	if f.index >= f.length {
		return nil, violationf("element %d written to a collection declared with length %d", f.index, f.length)
	}
	if err := w.emitter.Element(f.index); err != nil {
		return nil, err
	}
	f.index++
	return w.fillSlot(fn, "element")
}

// EndCollection closes the collection opened by the matching
// BeginCollection. The element count must equal the declared length.
func (w *Writer) EndCollection(tok CollectionToken) error {
	f := w.top()
	if f == nil || f.kind != frameCollection {
		return violationf("collection ended with no collection open")
	}
	if f.id != tok.id {
		return violationf("collection end does not match the innermost open collection")
	}
	if f.index != f.length {
		return violationf("collection ended with %d of %d declared elements", f.index, f.length)
	}
	if err := w.emitter.EndCollection(); err != nil {
		return err
	}
	w.frames = w.frames[:len(w.frames)-1]
	w.top().kind = frameDone
	return nil
}

// Flush forwards to the backend. Only legal at a top-level boundary, with no
// frames open.
func (w *Writer) Flush() error {
	if len(w.frames) != 0 {
		return violationf("flush with %d frames still open", len(w.frames))
	}
	return w.emitter.Flush()
}

// PutShared writes value as a structure at most once per session. On first
// sight fn fills the open entry — it writes fields or a collection but must
// not begin or end the entry itself. On every later sight a Ref entry
// carrying the first sighting's id is substituted and fn is not invoked.
// value must be the object's identity: the same pointer for the same object.
func (w *Writer) PutShared(value any, tag Tag, fn WriteFunc) error {
	id, first := w.refs.Observe(value)
	tok, err := w.BeginEntry(value, tag)
	if err != nil {
		return err
	}
	if first {
		if err := fn(w); err != nil {
			return err
		}
	} else {
		if err := w.PutPrimitive(id, Ref); err != nil {
			return err
		}
	}
	return w.EndEntry(tok)
}

// fillSlot pushes a slot, runs fn against it, and verifies fn completed
// exactly one entry cycle.
func (w *Writer) fillSlot(fn WriteFunc, what string) (*Writer, error) {
	w.frames = append(w.frames, frame{kind: frameSlot})
	if err := fn(w); err != nil {
		return nil, err
	}
	f := w.top()
	if f.kind != frameSlot || !f.filled {
		return nil, violationf("%s callback did not complete a begin/end entry cycle", what)
	}
	w.frames = w.frames[:len(w.frames)-1]
	return w, nil
}

func violationTag(tag Tag) error {
	if tag == nil {
		return fmt.Errorf("nil tag: %w", ErrUnknownTag)
	}
	return fmt.Errorf("tag %v outside the recognized universe: %w", tag, ErrUnknownTag)
}

func kindName(k frameKind) string {
	switch k {
	case frameSlot:
		return "pending field or element"
	case frameEntry:
		return "entry"
	case frameStructure:
		return "structure"
	case framePrimitive:
		return "primitive"
	case frameCollection:
		return "collection"
	case frameDone:
		return "collection"
	}
	return "frame"
}
