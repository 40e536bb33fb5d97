package spill

import "errors"

var (
	// ErrIO wraps every failure to write or read a spill file or its index.
	ErrIO = errors.New("spill io error")

	// ErrCorrupt reports a record or header that cannot be parsed.
	ErrCorrupt = errors.New("corrupt spill data")

	// ErrIncompatibleVersion reports a spill file written by another major format version.
	ErrIncompatibleVersion = errors.New("incompatible spill format version")

	// ErrSealed reports a write after the map phase has ended.
	ErrSealed = errors.New("spill store sealed")

	// ErrNotSealed reports a read before the map phase has ended.
	ErrNotSealed = errors.New("spill store not sealed")
)
