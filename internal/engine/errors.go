package engine

import "errors"

// Sentinel errors for protocol misuse on the command path. They indicate a
// bug in the caller (stale address, wrong arity) rather than a runtime
// condition, and are reported back over the response channel instead of
// corrupting graph state.
var (
	ErrAddressNotFound = errors.New("address not found")
	ErrArityMismatch   = errors.New("input arity mismatch")
	ErrPortOutOfRange  = errors.New("port out of range")
	ErrKindMismatch    = errors.New("value kind mismatch")
)
