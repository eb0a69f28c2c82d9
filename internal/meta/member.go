package meta

import (
	"fmt"

	"github.com/funvibe/accessor/internal/types"
)

// MemberKind tags the variant stored in a Member.
type MemberKind int

const (
	KindField MemberKind = iota
	KindProperty
	KindEvent
	KindMethod
	KindMethodGroup
)

func (k MemberKind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindProperty:
		return "property"
	case KindEvent:
		return "event"
	case KindMethod:
		return "method"
	case KindMethodGroup:
		return "method group"
	}
	return fmt.Sprintf("MemberKind(%d)", int(k))
}

// Getter reads a member from a receiver.
type Getter func(recv any) (any, error)

// Setter writes a member on a receiver.
type Setter func(recv any, v any) error

// Member is one named entry of a Type. Fields, properties and events
// use Type/Get/Set; methods and method groups use Methods, in
// declaration order.
type Member struct {
	Name string
	Kind MemberKind

	Type types.ID
	Get  Getter
	Set  Setter

	Methods []*Method
}

// Data reports whether the member is a field, property or event.
func (m *Member) Data() bool {
	return m.Kind == KindField || m.Kind == KindProperty || m.Kind == KindEvent
}

// Callable reports whether the member is a method or method group.
func (m *Member) Callable() bool {
	return m.Kind == KindMethod || m.Kind == KindMethodGroup
}

// Gettable reports whether the member can be read.
func (m *Member) Gettable() bool { return m.Data() && m.Get != nil }

// Settable reports whether the member can be written.
func (m *Member) Settable() bool { return m.Data() && m.Set != nil }

// Inert reports whether a data member has neither getter nor setter.
func (m *Member) Inert() bool { return m.Data() && m.Get == nil && m.Set == nil }
