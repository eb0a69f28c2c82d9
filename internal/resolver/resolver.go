// Package resolver matches raw argument lists against method
// descriptors. Matching is structural and first-match: overloads are
// tried in declaration order and the first one that accepts the
// arguments wins, even if a later overload would fit more precisely.
package resolver

import (
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

// Resolver checks arguments against parameter descriptors.
type Resolver struct {
	Types *types.Universe

	// SkipGenericCheck disables type checks on parameters whose declared
	// type involves an unresolved type parameter.
	SkipGenericCheck bool
}

// New creates a resolver over u.
func New(u *types.Universe, skipGenericCheck bool) *Resolver {
	return &Resolver{Types: u, SkipGenericCheck: skipGenericCheck}
}

// Resolve positions and type-checks raw against m. It returns false if
// any parameter rejects its argument.
func (r *Resolver) Resolve(m *meta.Method, raw []any) ([]meta.CheckedArgument, bool) {
	if len(raw) > m.MaxCount || len(raw) < m.MinRequired {
		return nil, false
	}
	if m.MaxCount == 0 {
		return []meta.CheckedArgument{}, true
	}

	checked := make([]meta.CheckedArgument, m.MaxCount)
	for i := range m.Params {
		p := &m.Params[i]
		if p.Ordinal < len(raw) {
			v, ok := r.check(p, raw[p.Ordinal])
			if !ok {
				return nil, false
			}
			checked[p.Ordinal] = meta.CheckedArgument{Value: v}
			continue
		}
		if !p.Optional() {
			return nil, false
		}
		checked[p.Ordinal] = meta.CheckedArgument{Value: p.Default, ImplicitDefault: p.ImplicitDefault}
	}
	return checked, true
}

// ResolveGroup tries each overload in order and returns the index of the
// first match with its arguments, or -1.
func (r *Resolver) ResolveGroup(ms []*meta.Method, raw []any) (int, []meta.CheckedArgument) {
	for i, m := range ms {
		if args, ok := r.Resolve(m, raw); ok {
			return i, args
		}
	}
	return -1, nil
}

// check validates one argument and returns the value to store.
func (r *Resolver) check(p *meta.Parameter, arg any) (any, bool) {
	var (
		v    any
		t    types.ID
		boxd bool
	)
	switch p.Mode {
	case meta.ByRef, meta.OutOnly:
		ref, ok := arg.(*meta.Ref)
		if !ok || ref == nil || ref.Mode != p.Mode {
			return nil, false
		}
		v, t, boxd = ref.Value, ref.Type, true
	case meta.ReadOnlyRef:
		if ref, ok := arg.(*meta.Ref); ok && ref != nil {
			if ref.Mode != meta.ByRef {
				return nil, false
			}
			v, t, boxd = ref.Value, ref.Type, true
			break
		}
		v, t = arg, r.Types.TypeOf(arg)
	default:
		v, t = arg, r.Types.TypeOf(arg)
	}

	if p.Type == types.Any || (p.OpenGeneric && r.SkipGenericCheck) {
		return v, true
	}
	if !boxd && v == nil {
		return nil, !p.ValueKind
	}
	if t == p.Type {
		return v, true
	}
	if r.Types.Shape(p.Type).Nominal() && r.Types.AssignableFrom(p.Type, t) {
		return v, true
	}
	return nil, false
}
