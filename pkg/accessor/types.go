// Package accessor is the public surface of the runtime: descriptors,
// the dispatcher and the generic registry, re-exported for generated
// code and host programs.
package accessor

import (
	"github.com/funvibe/accessor/internal/async"
	"github.com/funvibe/accessor/internal/config"
	"github.com/funvibe/accessor/internal/dispatch"
	"github.com/funvibe/accessor/internal/generic"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

// Type aliases
type TypeID = types.ID
type TypeInfo = types.Info
type Universe = types.Universe
type Shape = types.Shape
type AsyncKind = types.AsyncKind
type Boxed = types.Boxed

type Parameter = meta.Parameter
type PassMode = meta.PassMode
type Method = meta.Method
type Member = meta.Member
type Type = meta.Type
type TypeBuilder = meta.TypeBuilder
type Ref = meta.Ref
type CheckedArgument = meta.CheckedArgument
type Accessible = meta.Accessible
type Invoke = meta.Invoke
type InvokeAsync = meta.InvokeAsync

type Handle = async.Handle[any]

type Dispatcher = dispatch.Dispatcher
type AccessError = dispatch.AccessError
type CallError = dispatch.CallError
type PreconditionViolation = dispatch.PreconditionViolation

type Registry = generic.Registry
type Entry = generic.Entry
type RegistryOption = generic.Option

type Config = config.Config

// Re-export sentinel errors
var (
	ErrNotFound         = dispatch.ErrNotFound
	ErrArgumentMismatch = dispatch.ErrArgumentMismatch
	ErrUnsupported      = dispatch.ErrUnsupported
	ErrPrecondition     = dispatch.ErrPrecondition
)

// Re-export pass modes
const (
	ByValue     = meta.ByValue
	ByRef       = meta.ByRef
	OutOnly     = meta.OutOnly
	ReadOnlyRef = meta.ReadOnlyRef
)

// Re-export shapes
const (
	ShapeClass     = types.ShapeClass
	ShapeStruct    = types.ShapeStruct
	ShapeInterface = types.ShapeInterface
	ShapeEnum      = types.ShapeEnum
)

// Any is the universal parameter type.
const Any = types.Any

// NewUniverse creates a type universe seeded with the builtin types.
func NewUniverse() *Universe { return types.NewUniverse() }

// NewTypeBuilder starts a descriptor for id.
func NewTypeBuilder(id TypeID, shape Shape) *TypeBuilder { return meta.NewTypeBuilder(id, shape) }

// NewMethod builds a method descriptor; see meta.NewMethod.
func NewMethod(name string, params []Parameter, invoke Invoke, invokeAsync InvokeAsync) (*Method, error) {
	return meta.NewMethod(name, params, invoke, invokeAsync)
}

// NewRegistry creates a generic-construction registry configured from
// cfg. A nil cfg uses the defaults.
func NewRegistry(u *Universe, entries map[TypeID]*Entry, cfg *Config, opts ...RegistryOption) *Registry {
	if cfg == nil {
		cfg = config.Default()
	}
	return generic.NewRegistry(u, entries, append([]RegistryOption{generic.WithConfig(cfg)}, opts...)...)
}

// New creates a dispatcher over u configured from cfg. A nil cfg uses
// the defaults.
func New(u *Universe, cfg *Config, opts ...dispatch.Option) *Dispatcher {
	if cfg == nil {
		cfg = config.Default()
	}
	return dispatch.New(u, append([]dispatch.Option{dispatch.WithConfig(cfg)}, opts...)...)
}

// NewRef wraps v for a by-reference parameter of type t.
func NewRef(t TypeID, v any) *Ref { return meta.NewRef(t, v) }

// NewOut creates an output argument of type t.
func NewOut(t TypeID) *Ref { return meta.NewOut(t) }

// IsNotCallable reports ErrNotFound and ErrArgumentMismatch alike.
func IsNotCallable(err error) bool { return dispatch.IsNotCallable(err) }

// ToValue erases v for an argument list. Values that already report
// their type, and nil, pass through; anything else is boxed with t.
func ToValue(t TypeID, v any) any {
	switch v.(type) {
	case nil, types.Typed:
		return v
	}
	if t == "" || t == types.Unknown {
		return v
	}
	return Boxed{Type: t, Value: v}
}
