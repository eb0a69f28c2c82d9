// Package types holds the identity model shared by descriptors, the
// resolver and the generic registry. Types are named by ID; structure
// (shape, value kind, nominal bases) lives in a Universe built once by
// generated code.
package types

import (
	"fmt"
	"strings"
)

// ID identifies one closed (or open, for generic definitions) type.
type ID string

const (
	// Any is the universal type. Parameters declared as Any accept every value.
	Any ID = "any"

	// Unknown is reported by TypeOf for values it cannot classify.
	Unknown ID = "?"

	// None is reported by TypeOf for nil.
	None ID = ""
)

// Builtin type IDs reported by TypeOf for Go scalar values.
const (
	Bool    ID = "bool"
	Int     ID = "int"
	Int8    ID = "int8"
	Int16   ID = "int16"
	Int32   ID = "int32"
	Int64   ID = "int64"
	Uint    ID = "uint"
	Uint8   ID = "uint8"
	Uint16  ID = "uint16"
	Uint32  ID = "uint32"
	Uint64  ID = "uint64"
	Float32 ID = "float32"
	Float64 ID = "float64"
	String  ID = "string"
	Bytes   ID = "bytes"
	Error   ID = "error"
)

// Shape classifies a type structurally.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeClass
	ShapeStruct
	ShapeInterface
	ShapeEnum
	ShapeDelegate
	ShapeTypeParameter
	ShapeTuple
	ShapeArray
	ShapePointer
)

var shapeNames = [...]string{
	ShapeUnknown:       "unknown",
	ShapeClass:         "class",
	ShapeStruct:        "struct",
	ShapeInterface:     "interface",
	ShapeEnum:          "enum",
	ShapeDelegate:      "delegate",
	ShapeTypeParameter: "type-parameter",
	ShapeTuple:         "tuple",
	ShapeArray:         "array",
	ShapePointer:       "pointer",
}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Nominal reports whether values of other types may be assigned to a
// parameter of this shape through a supertype or interface relation.
func (s Shape) Nominal() bool {
	return s == ShapeClass || s == ShapeInterface || s == ShapeTypeParameter
}

// AsyncKind tells whether a type behaves as a pending result.
type AsyncKind int

const (
	AsyncNone AsyncKind = iota
	// AsyncSingleResult is a heap-allocated, single-completion result.
	AsyncSingleResult
	// AsyncValueResult is a value-typed result that may complete synchronously.
	AsyncValueResult
	// AsyncOther covers awaitable types with a custom completion protocol.
	AsyncOther
)

func (k AsyncKind) String() string {
	switch k {
	case AsyncNone:
		return "none"
	case AsyncSingleResult:
		return "single"
	case AsyncValueResult:
		return "value"
	case AsyncOther:
		return "other"
	}
	return fmt.Sprintf("AsyncKind(%d)", int(k))
}

// Info is the structural record of one type.
type Info struct {
	ID    ID
	Shape Shape

	// ValueKind is true for types whose values can never be nil.
	ValueKind bool

	// Bases lists direct supertypes and implemented interfaces. For a
	// type parameter it lists the constraints.
	Bases []ID

	// Open is the generic definition this type closes, if any.
	Open ID

	// Args are the type arguments that close Open.
	Args []ID
}

// Generic reports whether the type is an instantiation of a generic definition.
func (i *Info) Generic() bool {
	return i.Open != ""
}

// Closed builds the ID of open instantiated with args, e.g. Box<T> + [string] → Box<string>.
func Closed(open ID, args ...ID) ID {
	name := string(open)
	if idx := strings.IndexByte(name, '<'); idx != -1 {
		name = name[:idx]
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(a)
	}
	return ID(name + "<" + strings.Join(parts, ",") + ">")
}
