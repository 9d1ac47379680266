package sauerkraut

import (
	"errors"
	"fmt"
)

// ErrProtocolViolation reports a writer call made out of legal sequence, such
// as an unbalanced end, a put outside its enclosing span, or a write against
// an entry already resolved to another shape. Violations are programming
// errors in the driver and are fatal to the session; the caller must abandon
// it and repickle the graph from scratch.
var ErrProtocolViolation = errors.New("pickle protocol violation")

// ErrUnknownTag reports an entry tag outside the recognized primitive and
// structural universe.
var ErrUnknownTag = errors.New("unknown pickle tag")

func violationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrProtocolViolation)...)
}
