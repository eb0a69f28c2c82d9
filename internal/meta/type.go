package meta

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/funvibe/accessor/internal/types"
)

// Accessible is implemented by receivers that expose member access.
type Accessible interface {
	Descriptor() *Type
}

// TupleElement names one element of a tuple-shaped type.
type TupleElement struct {
	Name string
	Type types.ID
}

// Type is the structural description of one closed type.
type Type struct {
	ID           types.ID
	Shape        types.Shape
	Async        types.AsyncKind
	GenericArgs  []types.ID
	Tuple        []TupleElement
	Constructors []*Method

	// Markers lists the generator markers attached to the type.
	Markers []string

	members map[string]*Member
}

// Member looks up a member by name.
func (t *Type) Member(name string) (*Member, bool) {
	m, ok := t.members[name]
	return m, ok
}

// MemberNames returns member names in sorted order.
func (t *Type) MemberNames() []string {
	names := maps.Keys(t.members)
	slices.Sort(names)
	return names
}

// Len returns the number of members.
func (t *Type) Len() int { return len(t.members) }

// HasMarker reports whether the generator tagged the type with marker.
func (t *Type) HasMarker(marker string) bool {
	return slices.Contains(t.Markers, marker)
}

// IsGeneric reports whether the type was closed over type arguments.
func (t *Type) IsGeneric() bool { return len(t.GenericArgs) > 0 }

// TypeBuilder assembles a Type. Generated code drives it once per type.
type TypeBuilder struct {
	t   *Type
	err error
}

// NewTypeBuilder starts a descriptor for id.
func NewTypeBuilder(id types.ID, shape types.Shape) *TypeBuilder {
	return &TypeBuilder{t: &Type{ID: id, Shape: shape, members: make(map[string]*Member)}}
}

func (b *TypeBuilder) add(m *Member) *TypeBuilder {
	if b.err != nil {
		return b
	}
	if m.Name == "" {
		b.err = fmt.Errorf("type %s: member without a name", b.t.ID)
		return b
	}
	if _, dup := b.t.members[m.Name]; dup {
		b.err = fmt.Errorf("type %s: duplicate member %q", b.t.ID, m.Name)
		return b
	}
	b.t.members[m.Name] = m
	return b
}

// Field adds a field. get or set may be nil.
func (b *TypeBuilder) Field(name string, t types.ID, get Getter, set Setter) *TypeBuilder {
	return b.add(&Member{Name: name, Kind: KindField, Type: t, Get: get, Set: set})
}

// Property adds a property. get or set may be nil.
func (b *TypeBuilder) Property(name string, t types.ID, get Getter, set Setter) *TypeBuilder {
	return b.add(&Member{Name: name, Kind: KindProperty, Type: t, Get: get, Set: set})
}

// Event adds an event. The getter returns the current handler list.
func (b *TypeBuilder) Event(name string, t types.ID, get Getter, set Setter) *TypeBuilder {
	return b.add(&Member{Name: name, Kind: KindEvent, Type: t, Get: get, Set: set})
}

// Method adds a method. Adding a second method under the same name turns
// the entry into a method group; overloads keep declaration order.
func (b *TypeBuilder) Method(m *Method) *TypeBuilder {
	if b.err != nil {
		return b
	}
	if m == nil {
		b.err = fmt.Errorf("type %s: nil method", b.t.ID)
		return b
	}
	if prev, ok := b.t.members[m.Name]; ok {
		if !prev.Callable() {
			b.err = fmt.Errorf("type %s: method %q collides with %s", b.t.ID, m.Name, prev.Kind)
			return b
		}
		prev.Kind = KindMethodGroup
		prev.Methods = append(prev.Methods, m)
		return b
	}
	return b.add(&Member{Name: m.Name, Kind: KindMethod, Type: m.Returns, Methods: []*Method{m}})
}

// Constructor appends a constructor overload.
func (b *TypeBuilder) Constructor(m *Method) *TypeBuilder {
	if b.err == nil && m == nil {
		b.err = fmt.Errorf("type %s: nil constructor", b.t.ID)
	}
	if b.err == nil {
		m.Static = true
		b.t.Constructors = append(b.t.Constructors, m)
	}
	return b
}

// Generic records the type arguments the type was closed over.
func (b *TypeBuilder) Generic(args ...types.ID) *TypeBuilder {
	b.t.GenericArgs = append(b.t.GenericArgs, args...)
	return b
}

// Async marks the type as an awaitable result.
func (b *TypeBuilder) Async(kind types.AsyncKind) *TypeBuilder {
	b.t.Async = kind
	return b
}

// Tuple records the element layout of a tuple-shaped type.
func (b *TypeBuilder) Tuple(elems ...TupleElement) *TypeBuilder {
	b.t.Tuple = append(b.t.Tuple, elems...)
	return b
}

// Mark attaches generator markers.
func (b *TypeBuilder) Mark(markers ...string) *TypeBuilder {
	b.t.Markers = append(b.t.Markers, markers...)
	return b
}

// Build returns the finished descriptor.
func (b *TypeBuilder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.t, nil
}

// MustBuild is like Build but panics on error.
func (b *TypeBuilder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
