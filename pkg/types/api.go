package types

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindInvalidArgument    ErrKind = iota // nil/out-of-range/malformed input
	ErrKindNotFound                          // unknown id, name, or module
	ErrKindAlreadyExists                     // duplicate name at registration
	ErrKindTypeMismatch                      // accessor type differs from descriptor
	ErrKindOutOfBounds                       // index or numeric bound violated
	ErrKindResourceExhausted                 // registry/module/array/pool capacity hit
	ErrKindOutOfMemory                       // underlying allocation failed
	ErrKindAlreadyInitialized                // lifecycle: init called twice
	ErrKindNotInitialized                    // lifecycle: used before init or after teardown
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidArgument:
		return "invalid argument"
	case ErrKindNotFound:
		return "not found"
	case ErrKindAlreadyExists:
		return "already exists"
	case ErrKindTypeMismatch:
		return "type mismatch"
	case ErrKindOutOfBounds:
		return "out of bounds"
	case ErrKindResourceExhausted:
		return "resource exhausted"
	case ErrKindOutOfMemory:
		return "out of memory"
	case ErrKindAlreadyInitialized:
		return "already initialized"
	case ErrKindNotInitialized:
		return "not initialized"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found condition regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrInvalidArgument indicates nil, malformed, or out-of-range input.
	ErrInvalidArgument = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid argument"}
	// ErrNotFound indicates an unknown extension id, name, or module.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrDuplicateName indicates a property name is already registered.
	ErrDuplicateName = &Error{Kind: ErrKindAlreadyExists, Msg: "duplicate property name"}
	// ErrTypeMismatch indicates a typed accessor does not match the descriptor.
	ErrTypeMismatch = &Error{Kind: ErrKindTypeMismatch, Msg: "property has different type"}
	// ErrOutOfBounds indicates an index outside the valid range.
	ErrOutOfBounds = &Error{Kind: ErrKindOutOfBounds, Msg: "index out of bounds"}
	// ErrResourceExhausted indicates a fixed capacity limit was reached.
	ErrResourceExhausted = &Error{Kind: ErrKindResourceExhausted, Msg: "capacity exhausted"}
	// ErrOutOfMemory indicates the backing allocation could not be grown.
	ErrOutOfMemory = &Error{Kind: ErrKindOutOfMemory, Msg: "out of memory"}
	// ErrAlreadyInitialized indicates a second initialization without teardown.
	ErrAlreadyInitialized = &Error{Kind: ErrKindAlreadyInitialized, Msg: "already initialized"}
	// ErrNotInitialized indicates use before initialization or after teardown.
	ErrNotInitialized = &Error{Kind: ErrKindNotInitialized, Msg: "not initialized"}
	// ErrReadOnly indicates a write to a property flagged read-only.
	ErrReadOnly = &Error{Kind: ErrKindInvalidArgument, Msg: "property is read-only"}
)

// KindOf returns the kind of the first *Error in err's chain.
// ok is false when err carries no typed error.
func KindOf(err error) (ErrKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries a typed error of kind k.
func IsKind(err error, k ErrKind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// -----------------------------------------------------------------------------
// Core Identifiers
// -----------------------------------------------------------------------------

// ExtensionID is the stable handle of a registered extension property.
// IDs are dense, assigned in registration order, and never reused.
type ExtensionID int32

// InvalidExtension is returned alongside errors where an id is expected.
const InvalidExtension ExtensionID = -1

// Valid reports whether id could name a registered extension.
func (id ExtensionID) Valid() bool { return id >= 0 }

// ModuleID identifies the physics or I/O module that owns extensions.
type ModuleID int32
