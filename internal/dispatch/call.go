package dispatch

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/accessor/internal/async"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	skipGenericCheck bool
}

// SkipGenericCheck overrides the dispatcher default for one call.
func SkipGenericCheck(skip bool) CallOption {
	return func(o *callOptions) { o.skipGenericCheck = skip }
}

func (d *Dispatcher) callOptions(opts []CallOption) callOptions {
	o := callOptions{skipGenericCheck: d.skipGenericCheck}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resolve finds the first overload of name in t that accepts raw.
func (d *Dispatcher) resolve(op string, t *meta.Type, name string, raw []any, static bool, o callOptions) (*meta.Method, []meta.CheckedArgument, error) {
	m, ok := t.Member(name)
	if !ok || !m.Callable() {
		d.tracef("%s %s.%s: not found", op, t.ID, name)
		return nil, nil, &CallError{Op: op, Type: t.ID, Member: name, Args: len(raw), Err: ErrNotFound}
	}
	group := m.Methods
	if static {
		group = staticOverloads(group)
		if len(group) == 0 {
			return nil, nil, &CallError{Op: op, Type: t.ID, Member: name, Args: len(raw), Err: ErrNotFound}
		}
	}
	idx, args := d.Resolver(o.skipGenericCheck).ResolveGroup(group, raw)
	if idx < 0 {
		d.tracef("%s %s.%s/%d: no overload of %d matched", op, t.ID, name, len(raw), len(group))
		return nil, nil, &CallError{Op: op, Type: t.ID, Member: name, Args: len(raw), Err: ErrArgumentMismatch}
	}
	d.tracef("%s %s.%s/%d: overload %d %s", op, t.ID, name, len(raw), idx, group[idx].Signature())
	return group[idx], args, nil
}

func staticOverloads(ms []*meta.Method) []*meta.Method {
	var out []*meta.Method
	for _, m := range ms {
		if m.Static {
			out = append(out, m)
		}
	}
	return out
}

// Call invokes the method called name on recv. raw is handed to the
// closure unchanged, so *meta.Ref arguments carry outputs back.
func (d *Dispatcher) Call(recv meta.Accessible, name string, raw []any, opts ...CallOption) (any, error) {
	t := d.mustDescriptor("call", recv, name)
	return d.invoke("call", t, recv, name, raw, false, d.callOptions(opts))
}

// CallStatic invokes a static method of t without a receiver.
func (d *Dispatcher) CallStatic(t *meta.Type, name string, raw []any, opts ...CallOption) (any, error) {
	if t == nil {
		panic(PreconditionViolation{Op: "call static", Reason: "nil type descriptor"})
	}
	if name == "" {
		panic(PreconditionViolation{Op: "call static", Reason: "empty member name"})
	}
	return d.invoke("call static", t, nil, name, raw, true, d.callOptions(opts))
}

func (d *Dispatcher) invoke(op string, t *meta.Type, recv meta.Accessible, name string, raw []any, static bool, o callOptions) (any, error) {
	m, args, err := d.resolve(op, t, name, raw, static, o)
	if err != nil {
		return nil, err
	}
	if m.Invoke == nil {
		return nil, &CallError{Op: op, Type: t.ID, Member: name, Args: len(raw), Err: ErrUnsupported}
	}
	v, err := m.Invoke(recv, args, raw)
	if err != nil {
		return nil, &CallError{Op: op, Type: t.ID, Member: name, Args: len(raw), Err: err}
	}
	return v, nil
}

// TryCall is Call for speculative probing: ok is false when the method
// is missing or no overload accepts raw. Unsupported members and errors
// raised by the callee are returned as errors.
func (d *Dispatcher) TryCall(recv meta.Accessible, name string, raw []any, opts ...CallOption) (v any, ok bool, err error) {
	v, err = d.Call(recv, name, raw, opts...)
	if err != nil {
		var ce *CallError
		if errors.As(err, &ce) && IsNotCallable(ce.Err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// CallAsync invokes the asynchronous closure of the method called name.
// It never blocks; every failure, including a broken precondition, is
// delivered through the returned handle.
func (d *Dispatcher) CallAsync(recv meta.Accessible, name string, raw []any, opts ...CallOption) *async.Handle[any] {
	t, pv := d.descriptor("call async", recv, name)
	if pv != nil {
		return async.Faulted[any](*pv)
	}
	m, args, err := d.resolve("call async", t, name, raw, false, d.callOptions(opts))
	if err != nil {
		return async.Faulted[any](err)
	}
	h := InvokeAsync("call async", t.ID, name, m, recv, args, raw)
	d.tracef("call async %s.%s: handle %s", t.ID, name, h.ID())
	return h
}

// InvokeAsync runs m's async closure with already checked arguments and
// wraps its outcome in *CallError. A nil closure, a nil handle or a panic
// while starting the call fault the returned handle; InvokeAsync itself
// never panics.
func InvokeAsync(op string, id types.ID, name string, m *meta.Method, recv any, args []meta.CheckedArgument, raw []any) (h *async.Handle[any]) {
	callErr := func(err error) error {
		return &CallError{Op: op, Type: id, Member: name, Args: len(raw), Err: err}
	}
	if m.InvokeAsync == nil {
		return async.Faulted[any](callErr(ErrUnsupported))
	}
	defer func() {
		if r := recover(); r != nil {
			h = async.Faulted[any](callErr(&async.PanicError{Value: r}))
		}
	}()
	inner := m.InvokeAsync(recv, args, raw)
	if inner == nil {
		return async.Faulted[any](callErr(ErrUnsupported))
	}
	return async.Then(inner, func(v any, err error) (any, error) {
		if err != nil {
			return nil, callErr(err)
		}
		return v, nil
	})
}

// Invocation is one entry of a CallAll batch.
type Invocation struct {
	Recv meta.Accessible
	Name string
	Args []any
}

// CallAll starts every invocation asynchronously and waits for all of
// them. Results are returned in input order. The first failure cancels
// the wait for the rest and is returned; the calls themselves keep
// running.
func (d *Dispatcher) CallAll(ctx context.Context, calls []Invocation, opts ...CallOption) ([]any, error) {
	results := make([]any, len(calls))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range calls {
		h := d.CallAsync(c.Recv, c.Name, c.Args, opts...)
		g.Go(func() error {
			v, err := h.Await(ctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
