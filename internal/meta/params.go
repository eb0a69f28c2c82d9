// Package meta defines the descriptors that generated code hands to the
// runtime: parameters, methods, members and types.
//
// Descriptors are built once during initialization and never mutated.
// Every call site shares them, so they are safe for concurrent reads.
package meta

import (
	"fmt"

	"github.com/funvibe/accessor/internal/types"
)

// PassMode tells how an argument is handed to a parameter.
type PassMode int

const (
	ByValue PassMode = iota
	ByRef
	OutOnly
	ReadOnlyRef
)

func (m PassMode) String() string {
	switch m {
	case ByValue:
		return "value"
	case ByRef:
		return "ref"
	case OutOnly:
		return "out"
	case ReadOnlyRef:
		return "in"
	}
	return fmt.Sprintf("PassMode(%d)", int(m))
}

// Parameter describes one formal parameter.
type Parameter struct {
	Name string
	Type types.ID
	Mode PassMode

	// Ordinal is the zero-based position. -1 is reserved for an implicit receiver.
	Ordinal int

	// HasDefault is true when the declaration carries an explicit default.
	HasDefault bool
	Default    any

	// ImplicitDefault marks trailing variadic or defaulted slots the
	// generator fills without user input.
	ImplicitDefault bool

	// ValueKind is true when the declared type can never hold nil.
	ValueKind bool

	// OpenGeneric is true when Type mentions a type parameter that was
	// not resolved at generation time.
	OpenGeneric bool
}

// Optional reports whether the parameter can be omitted by the caller.
func (p *Parameter) Optional() bool {
	return p.HasDefault || p.ImplicitDefault
}

// ByReference reports whether the parameter requires a *Ref argument.
func (p *Parameter) ByReference() bool {
	return p.Mode == ByRef || p.Mode == OutOnly
}

func (p *Parameter) String() string {
	s := p.Name + " " + string(p.Type)
	if p.Mode != ByValue {
		s = p.Mode.String() + " " + s
	}
	if p.HasDefault {
		s += fmt.Sprintf(" = %v", p.Default)
	} else if p.ImplicitDefault {
		s += " = ..."
	}
	return s
}

// Ref threads by-reference and output arguments through a positional
// argument list. Callers pass *Ref so the callee can write back Value.
type Ref struct {
	Value any
	Type  types.ID
	Mode  PassMode
}

// NewRef creates a by-reference argument holding v.
func NewRef(t types.ID, v any) *Ref {
	return &Ref{Value: v, Type: t, Mode: ByRef}
}

// NewOut creates an output-only argument of type t.
func NewOut(t types.ID) *Ref {
	return &Ref{Type: t, Mode: OutOnly}
}

// CheckedArgument is one slot of a resolved argument list.
type CheckedArgument struct {
	Value any

	// ImplicitDefault is true when the slot was filled from a default
	// the caller never supplied.
	ImplicitDefault bool
}

// Values returns the plain values of a resolved argument list.
func Values(args []CheckedArgument) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}
