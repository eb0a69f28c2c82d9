package dispatch

import (
	"errors"
	"fmt"

	"github.com/funvibe/accessor/internal/types"
)

var (
	// ErrNotFound means the member does not exist or has the wrong kind.
	ErrNotFound = errors.New("member not found")

	// ErrArgumentMismatch means no overload accepted the arguments.
	ErrArgumentMismatch = errors.New("no overload matches the arguments")

	// ErrUnsupported means the member exists but cannot be invoked the way
	// the caller asked.
	ErrUnsupported = errors.New("invocation not supported")

	// ErrPrecondition is carried by PreconditionViolation and by faulted
	// async handles when the caller broke the calling contract.
	ErrPrecondition = errors.New("precondition violated")
)

// AccessError reports a failed Get or Set.
type AccessError struct {
	Op     string
	Type   types.ID
	Member string
	Err    error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %s.%s: %v", e.Op, e.Type, e.Member, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// CallError reports a failed Call, CallAsync or construction.
type CallError struct {
	Op     string
	Type   types.ID
	Member string
	Args   int
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s %s.%s/%d: %v", e.Op, e.Type, e.Member, e.Args, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// PreconditionViolation is the panic value raised when a caller passes a
// nil receiver, an empty member name or a receiver without a descriptor.
type PreconditionViolation struct {
	Op     string
	Reason string
}

func (p PreconditionViolation) Error() string {
	return fmt.Sprintf("%s: %s: %s", p.Op, ErrPrecondition, p.Reason)
}

func (p PreconditionViolation) Unwrap() error { return ErrPrecondition }

// IsNotCallable reports whether err means "this isn't callable the way I
// asked": the member is missing or no overload accepts the arguments.
func IsNotCallable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrArgumentMismatch)
}
