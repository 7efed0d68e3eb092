// Package status defines the error categories surfaced across polykv's
// public API.
//
// Every operation that can fail returns a *Status (or nil on success).
// Status models the "small enum discriminant plus message" shape called
// for by a systems-language reimplementation of a C-ABI error
// out-parameter, while keeping the same six categories a binding layer
// would need to translate back into the C ABI's advisory error strings.
package status

import (
	"errors"
	"fmt"
)

// Category is the small enum discriminant carried by every Status.
type Category string

const (
	// InvalidArgument covers malformed parameter records: missing
	// required outputs, both transaction and snapshot supplied,
	// non-existent snapshot id, unknown option combinations.
	InvalidArgument Category = "invalid_argument"

	// Uninitialized covers use of a database/transaction/arena handle
	// that was never initialized or was already released.
	Uninitialized Category = "uninitialized_state"

	// NotImplemented covers operations unsupported by the active
	// substrate, such as named collections on a single-namespace engine.
	NotImplemented Category = "not_implemented"

	// Substrate covers I/O, corruption, or engine-specific failures
	// surfaced by the underlying ordered-KV substrate.
	Substrate Category = "substrate_error"

	// Conflict covers transaction validation failure: a watched key
	// changed generation, or a presence mismatch was observed at commit.
	Conflict Category = "conflict"

	// OutOfMemory covers arena growth failure or system allocation
	// failure.
	OutOfMemory Category = "out_of_memory"
)

// prefix is the documented code prefix per category (§9 redesign note:
// "small enum discriminant plus message").
var prefix = map[Category]string{
	InvalidArgument: "PKV-ARG",
	Uninitialized:   "PKV-INIT",
	NotImplemented:  "PKV-NOTIMPL",
	Substrate:       "PKV-SUB",
	Conflict:        "PKV-CONFLICT",
	OutOfMemory:     "PKV-OOM",
}

// Status is a structured, categorized error.
type Status struct {
	Category Category
	Message  string
	Cause    error
}

// New creates a Status with the given category and message.
func New(category Category, message string) *Status {
	return &Status{Category: category, Message: message}
}

// Newf creates a Status with a formatted message.
func Newf(category Category, format string, args ...any) *Status {
	return &Status{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a Status in the given category that wraps an underlying
// error, using the error's text as the message. It returns nil for a nil
// cause.
func Wrap(category Category, cause error) *Status {
	if cause == nil {
		return nil
	}
	return &Status{Category: category, Message: cause.Error(), Cause: cause}
}

// Wrapf creates a Status wrapping cause with a formatted message,
// distinct from Wrap's default message (the cause's own Error text).
func Wrapf(category Category, cause error, format string, args ...any) *Status {
	if cause == nil {
		return nil
	}
	return &Status{Category: category, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Error implements the error interface.
func (s *Status) Error() string {
	code := prefix[s.Category]
	if code == "" {
		code = "PKV-UNKNOWN"
	}
	if s.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", code, s.Message, s.Cause)
	}
	return fmt.Sprintf("[%s] %s", code, s.Message)
}

// Unwrap supports errors.Is / errors.As against the wrapped cause.
func (s *Status) Unwrap() error {
	return s.Cause
}

// Is reports whether target is a *Status in the same category.
func (s *Status) Is(target error) bool {
	t, ok := target.(*Status)
	if !ok {
		return false
	}
	return s.Category == t.Category
}

// Of extracts the Category of err, or "" if err is not a *Status.
func Of(err error) Category {
	var s *Status
	if errors.As(err, &s) {
		return s.Category
	}
	return ""
}

// Is reports whether err is a *Status of the given category.
func Is(err error, category Category) bool {
	return Of(err) == category
}

// Sentinel statuses for conditions that do not carry call-specific detail.
var (
	// ErrBothTransactionAndSnapshot: a read specified both a transaction
	// and a snapshot — invalid per spec.
	ErrBothTransactionAndSnapshot = New(InvalidArgument, "both transaction and snapshot supplied")

	// ErrUnknownSnapshot: a snapshot id does not exist (never created,
	// or already dropped).
	ErrUnknownSnapshot = New(InvalidArgument, "unknown or already-dropped snapshot")

	// ErrUnknownCollection: a collection id does not exist.
	ErrUnknownCollection = New(InvalidArgument, "unknown collection")

	// ErrCollectionExists: create() collided with an existing name.
	ErrCollectionExists = New(InvalidArgument, "collection name already exists")

	// ErrMainCollectionImmutable: an attempt was made to drop or rename
	// the main collection.
	ErrMainCollectionImmutable = New(InvalidArgument, "the main collection cannot be dropped or renamed")

	// ErrTransactionNotActive: an operation required an active
	// transaction but it was staged, committed, or aborted.
	ErrTransactionNotActive = New(Uninitialized, "transaction is not active")

	// ErrConflict: watch-set validation failed at stage/commit.
	ErrConflict = New(Conflict, "transaction conflict: a watched key changed")

	// ErrNamedCollectionsUnsupported: the active substrate has no native
	// collection support and the caller asked for a non-empty name.
	ErrNamedCollectionsUnsupported = New(NotImplemented, "substrate does not support named collections")
)
