package errors

import stderrors "errors"

// Sentinel errors the caller is expected to compare against with errors.Is,
// mirroring the source's GrausError enum and marselester-rascaldb's
// string-constant Error pattern: these are control-flow signals, not
// diagnostic payloads, so they carry no extra context.
var (
	// ErrKeyNotFound is returned by Remove and UpdateIf when the target key
	// is absent from the index.
	ErrKeyNotFound = stderrors.New("ignite: key not found")

	// ErrPredicateNotSatisfied is returned by UpdateIf when a supplied
	// predicate evaluates to false.
	ErrPredicateNotSatisfied = stderrors.New("ignite: predicate not satisfied")
)
