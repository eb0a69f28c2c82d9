package generic

import (
	"github.com/funvibe/accessor/internal/async"
	"github.com/funvibe/accessor/internal/dispatch"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/resolver"
	"github.com/funvibe/accessor/internal/types"
)

const ctorName = "new"

// construct picks the first constructor of closed that accepts raw.
func (r *Registry) construct(op string, closed types.ID, raw []any, skipGenericCheck bool) (*meta.Method, []meta.CheckedArgument, error) {
	e, ok := r.entries[closed]
	if !ok {
		return nil, nil, &dispatch.CallError{Op: op, Type: closed, Member: ctorName, Args: len(raw), Err: dispatch.ErrNotFound}
	}
	idx, args := resolver.New(r.types, skipGenericCheck).ResolveGroup(e.Constructors, raw)
	if idx < 0 {
		return nil, nil, &dispatch.CallError{Op: op, Type: closed, Member: ctorName, Args: len(raw), Err: dispatch.ErrArgumentMismatch}
	}
	return e.Constructors[idx], args, nil
}

// CreateInstance runs the first constructor of closed that accepts raw.
// Constructors are invoked with a nil receiver.
func (r *Registry) CreateInstance(closed types.ID, raw []any, skipGenericCheck bool) (any, error) {
	m, args, err := r.construct("create", closed, raw, skipGenericCheck)
	if err != nil {
		return nil, err
	}
	if m.Invoke == nil {
		return nil, &dispatch.CallError{Op: "create", Type: closed, Member: ctorName, Args: len(raw), Err: dispatch.ErrUnsupported}
	}
	v, err := m.Invoke(nil, args, raw)
	if err != nil {
		return nil, &dispatch.CallError{Op: "create", Type: closed, Member: ctorName, Args: len(raw), Err: err}
	}
	return v, nil
}

// CreateInstanceAsync is CreateInstance through the constructor's
// asynchronous closure. Failures, including a constructor that panics
// while starting, are delivered through the handle.
func (r *Registry) CreateInstanceAsync(closed types.ID, raw []any, skipGenericCheck bool) *async.Handle[any] {
	m, args, err := r.construct("create async", closed, raw, skipGenericCheck)
	if err != nil {
		return async.Faulted[any](err)
	}
	h := dispatch.InvokeAsync("create async", closed, ctorName, m, nil, args, raw)
	r.tracef("create async %s: handle %s", closed, h.ID())
	return h
}

// MakeGeneric closes open over arg and constructs an instance of the
// result. A missing closed form is reported as ErrNotFound.
func (r *Registry) MakeGeneric(open, arg types.ID, raw []any, skipGenericCheck bool) (any, error) {
	closed, ok := r.GetClosedType(open, arg)
	if !ok {
		return nil, &dispatch.CallError{Op: "make generic", Type: types.Closed(open, arg), Member: ctorName, Args: len(raw), Err: dispatch.ErrNotFound}
	}
	return r.CreateInstance(closed, raw, skipGenericCheck)
}
