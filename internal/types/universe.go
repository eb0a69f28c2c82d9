package types

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Typed is implemented by values that carry their own type identity.
// Generated receivers implement it so TypeOf never needs reflection.
type Typed interface {
	TypeID() ID
}

// Boxed pairs an erased value with its declared type.
type Boxed struct {
	Type  ID
	Value any
}

func (b Boxed) TypeID() ID { return b.Type }

// Universe is the table of every type the generated code knows about.
// It is filled once and read concurrently afterwards.
type Universe struct {
	infos map[ID]*Info
}

// NewUniverse creates a universe seeded with the builtin scalar types.
func NewUniverse() *Universe {
	u := &Universe{infos: make(map[ID]*Info)}
	u.Define(&Info{ID: Any, Shape: ShapeClass})
	for _, id := range []ID{Bool, Int, Int8, Int16, Int32, Int64, Uint, Uint8, Uint16, Uint32, Uint64, Float32, Float64} {
		u.Define(&Info{ID: id, Shape: ShapeStruct, ValueKind: true, Bases: []ID{Any}})
	}
	u.Define(&Info{ID: String, Shape: ShapeClass, Bases: []ID{Any}})
	u.Define(&Info{ID: Bytes, Shape: ShapeArray, Bases: []ID{Any}})
	u.Define(&Info{ID: Error, Shape: ShapeInterface, Bases: []ID{Any}})
	return u
}

// Define adds or replaces a type. It must only be called during initialization.
func (u *Universe) Define(info *Info) *Universe {
	if info == nil || info.ID == None {
		panic("types: Define requires a non-empty ID")
	}
	u.infos[info.ID] = info
	return u
}

// Lookup returns the structural record of id.
func (u *Universe) Lookup(id ID) (*Info, bool) {
	info, ok := u.infos[id]
	return info, ok
}

// Shape returns the shape of id, or ShapeUnknown.
func (u *Universe) Shape(id ID) Shape {
	if info, ok := u.infos[id]; ok {
		return info.Shape
	}
	return ShapeUnknown
}

// IsValueKind reports whether values of id can never be nil.
func (u *Universe) IsValueKind(id ID) bool {
	if info, ok := u.infos[id]; ok {
		return info.ValueKind
	}
	return false
}

// IDs returns every known type ID in sorted order.
func (u *Universe) IDs() []ID {
	ids := maps.Keys(u.infos)
	slices.Sort(ids)
	return ids
}

// AssignableFrom reports whether a value of type src can be stored in a
// slot declared as dst through nominal subtyping. Identity and Any are
// always assignable. A type parameter accepts src when src satisfies
// every one of its constraints.
func (u *Universe) AssignableFrom(dst, src ID) bool {
	if dst == src || dst == Any {
		return true
	}
	if info, ok := u.infos[dst]; ok && info.Shape == ShapeTypeParameter {
		for _, c := range info.Bases {
			if !u.AssignableFrom(c, src) {
				return false
			}
		}
		return true
	}
	return u.derives(src, dst, make(map[ID]bool))
}

func (u *Universe) derives(src, dst ID, seen map[ID]bool) bool {
	if seen[src] {
		return false
	}
	seen[src] = true
	info, ok := u.infos[src]
	if !ok {
		return false
	}
	for _, b := range info.Bases {
		if b == dst || u.derives(b, dst, seen) {
			return true
		}
	}
	return false
}

// TypeOf returns the runtime type of an erased value.
func (u *Universe) TypeOf(v any) ID {
	switch v := v.(type) {
	case nil:
		return None
	case Typed:
		return v.TypeID()
	case bool:
		return Bool
	case int:
		return Int
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint:
		return Uint
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case string:
		return String
	case []byte:
		return Bytes
	case error:
		return Error
	}
	return Unknown
}

// Validate checks that every base and generic definition referenced by
// the universe is itself defined.
func (u *Universe) Validate() error {
	for _, id := range u.IDs() {
		info := u.infos[id]
		for _, b := range info.Bases {
			if _, ok := u.infos[b]; !ok {
				return fmt.Errorf("type %s: unknown base %s", id, b)
			}
		}
		if info.Open != "" {
			if _, ok := u.infos[info.Open]; !ok {
				return fmt.Errorf("type %s: unknown generic definition %s", id, info.Open)
			}
		}
	}
	return nil
}
