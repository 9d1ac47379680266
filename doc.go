// Package sauerkraut defines the write-side protocol for structural pickling.
//
// A driver walks an object graph and describes each value to a Writer as an
// entry: a primitive leaf, a structure of named fields, or a collection of
// elements. Fields and elements are themselves entries, so arbitrarily nested
// graphs are expressed as nested begin/end-entry cycles. The Writer validates
// call ordering and nesting, then forwards the sequence to an Emitter, the
// format-specific backend that renders it into bytes, text, or tree nodes.
//
// The package does not define a wire format, reflection-based pickler
// derivation, or the read side. Backends live in the emitters subdirectories;
// byte destinations that batch per pickle live under sinks.
package sauerkraut
