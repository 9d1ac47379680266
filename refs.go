package sauerkraut

// RefID identifies a previously pickled object within one session. Zero is
// never assigned; ids start at one and are meaningless outside the session
// that produced them.
type RefID uint32

// RefTable records object identities seen while pickling one root graph so
// cycles and shared subobjects serialize as Ref entries instead of being
// walked again. Identity means pointer identity, not value equality: callers
// must observe the same pointer (or other comparable handle) for the same
// object, and two value-equal objects with distinct identities each get their
// own id.
//
// One table serves one top-level session and is discarded with it. A session
// admits a single producer at a time; the table is not safe for concurrent
// mutation.
type RefTable struct {
	ids  map[any]RefID
	next RefID
}

// NewRefTable returns an empty table.
func NewRefTable() *RefTable {
	return &RefTable{ids: map[any]RefID{}}
}

// Observe records identity on first sight and returns its id. The second
// result is true exactly when this is the first encounter; on false the
// caller must write a Ref entry carrying the id instead of re-pickling the
// object.
func (t *RefTable) Observe(identity any) (RefID, bool) {
	if id, ok := t.ids[identity]; ok {
		return id, false
	}
	t.next++
	t.ids[identity] = t.next
	return t.next, true
}

// Len returns the number of identities observed so far.
func (t *RefTable) Len() int {
	return len(t.ids)
}

// Clone returns an independent copy. Dry-run passes write against a clone so
// estimation never pollutes the real session's table.
func (t *RefTable) Clone() *RefTable {
	c := &RefTable{ids: make(map[any]RefID, len(t.ids)), next: t.next}
	for k, v := range t.ids {
		c.ids[k] = v
	}
	return c
}
