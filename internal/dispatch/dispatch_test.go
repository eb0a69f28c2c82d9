package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/funvibe/accessor/internal/config"
	"github.com/funvibe/accessor/internal/demo"
	"github.com/funvibe/accessor/internal/dispatch"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

func newDispatcher(opts ...dispatch.Option) *dispatch.Dispatcher {
	return dispatch.New(demo.Tables().Universe, opts...)
}

func TestGetSet_Point(t *testing.T) {
	d := newDispatcher()
	p := &demo.Point{}

	if err := d.Set(p, "x", 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := d.Get(p, "x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 5 {
		t.Errorf("x = %v, want 5", v)
	}

	_, err = d.Get(p, "z")
	if !errors.Is(err, dispatch.ErrNotFound) {
		t.Fatalf("Get(z) err = %v, want ErrNotFound", err)
	}
	var ae *dispatch.AccessError
	if !errors.As(err, &ae) || ae.Member != "z" || ae.Type != demo.PointID {
		t.Errorf("unexpected access error: %#v", err)
	}
}

func TestGetSet_RoundTrip(t *testing.T) {
	d := newDispatcher()
	p := &demo.Point{}
	for _, name := range []string{"x", "y"} {
		for _, v := range []int{0, 1, -1, 42, 1 << 30, -(1 << 30)} {
			if err := d.Set(p, name, v); err != nil {
				t.Fatalf("Set(%s, %d): %v", name, v, err)
			}
			got, err := d.Get(p, name)
			if err != nil {
				t.Fatalf("Get(%s): %v", name, err)
			}
			if got != v {
				t.Errorf("%s: got %v, want %d", name, got, v)
			}
		}
	}
}

func TestGetSet_WrongKind(t *testing.T) {
	d := newDispatcher()
	p := &demo.Point{}

	if _, err := d.Get(p, "translate"); !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("Get(method) err = %v, want ErrNotFound", err)
	}
	if err := d.Set(p, "lengthSquared", 3); !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("Set(read-only) err = %v, want ErrNotFound", err)
	}
	if _, err := d.Get(p, "origin"); !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("Get(inert) err = %v, want ErrNotFound", err)
	}
}

func TestSet_SetterError(t *testing.T) {
	d := newDispatcher()
	err := d.Set(&demo.Point{}, "x", "five")
	if err == nil || errors.Is(err, dispatch.ErrNotFound) {
		t.Fatalf("err = %v, want setter error", err)
	}
	if !strings.Contains(err.Error(), "expected int") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGet_Property(t *testing.T) {
	d := newDispatcher()
	v, err := d.Get(&demo.Point{X: 3, Y: 4}, "lengthSquared")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 25 {
		t.Errorf("lengthSquared = %v, want 25", v)
	}
}

func TestEvent(t *testing.T) {
	d := newDispatcher()
	p := &demo.Point{}
	calls := 0
	if err := d.Set(p, "moved", demo.Handler(func(*demo.Point) { calls++ })); err != nil {
		t.Fatalf("Set(moved): %v", err)
	}
	if n, _ := d.Get(p, "moved"); n != 1 {
		t.Errorf("handlers = %v, want 1", n)
	}
	if _, err := d.Call(p, "translate", []any{1, 2}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestTryGet(t *testing.T) {
	d := newDispatcher()
	p := &demo.Point{X: 7}
	v, ok, err := d.TryGet(p, "x")
	if !ok || err != nil || v != 7 {
		t.Errorf("TryGet(x) = %v, %v, %v", v, ok, err)
	}
	_, ok, err = d.TryGet(p, "nope")
	if ok || err != nil {
		t.Errorf("TryGet(nope) = %v, %v; want false, nil", ok, err)
	}
}

func TestHas(t *testing.T) {
	d := newDispatcher()
	if !d.Has(&demo.Calc{}, "add") || d.Has(&demo.Calc{}, "sub") {
		t.Error("Has reported wrong membership")
	}
}

func TestCall_DefaultArgument(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{}
	v, err := d.Call(c, "add", []any{3})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 13 {
		t.Errorf("add(3) = %v, want 13", v)
	}
	v, err = d.Call(c, "add", []any{3, 4})
	if err != nil || v != 7 {
		t.Errorf("add(3, 4) = %v, %v; want 7", v, err)
	}

	_, err = d.Call(c, "add", nil)
	if !errors.Is(err, dispatch.ErrArgumentMismatch) {
		t.Errorf("add() err = %v, want ErrArgumentMismatch", err)
	}
}

func TestCall_RefOut(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{Acc: 9}
	a := meta.NewRef(types.Int, 1)
	b := meta.NewOut(types.Int)
	if _, err := d.Call(c, "swap", []any{a, b}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if a.Value != 9 || b.Value != 1 || c.Acc != 1 {
		t.Errorf("after swap a=%v b=%v acc=%d; want 9, 1, 1", a.Value, b.Value, c.Acc)
	}

	_, err := d.Call(c, "swap", []any{1, 2})
	if !errors.Is(err, dispatch.ErrArgumentMismatch) {
		t.Errorf("swap(1, 2) err = %v, want ErrArgumentMismatch", err)
	}
}

func TestCall_Variadic(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{}
	v, err := d.Call(c, "sum", []any{[]int{1, 2, 3}})
	if err != nil || v != 6 {
		t.Errorf("sum(1,2,3) = %v, %v; want 6", v, err)
	}
	v, err = d.Call(c, "sum", nil)
	if err != nil || v != 0 {
		t.Errorf("sum() = %v, %v; want 0", v, err)
	}
}

func TestCall_FirstMatchOverload(t *testing.T) {
	d := newDispatcher()
	v, err := d.Call(&demo.Calc{}, "show", []any{5})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != "any:5" {
		t.Errorf("show(5) = %v, want any:5 (first declared overload)", v)
	}
}

func TestCall_OverloadByType(t *testing.T) {
	d := newDispatcher()
	p := &demo.Point{X: 2, Y: 3}
	v, err := d.Call(p, "scale", []any{2.5})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != "float64" || p.X != 5 || p.Y != 7 {
		t.Errorf("scale(2.5) = %v, point %d,%d", v, p.X, p.Y)
	}
	v, err = d.Call(p, "scale", []any{2})
	if err != nil || v != "int" {
		t.Errorf("scale(2) = %v, %v; want int overload", v, err)
	}
	_, err = d.Call(p, "scale", []any{"x"})
	if !errors.Is(err, dispatch.ErrArgumentMismatch) {
		t.Errorf("scale(x) err = %v, want ErrArgumentMismatch", err)
	}
}

func TestCall_Errors(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{}

	_, err := d.Call(c, "missing", nil)
	if !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	_, err = d.Call(c, "acc", nil)
	if !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("property call err = %v, want ErrNotFound", err)
	}
	_, err = d.Call(c, "reset", nil)
	if !errors.Is(err, dispatch.ErrUnsupported) {
		t.Errorf("reset err = %v, want ErrUnsupported", err)
	}
	if dispatch.IsNotCallable(err) {
		t.Error("unsupported should be distinguishable from not callable")
	}
	_, err = d.Call(c, "fetch", []any{"k"})
	if !errors.Is(err, dispatch.ErrUnsupported) {
		t.Errorf("async-only sync call err = %v, want ErrUnsupported", err)
	}
	_, err = d.Call(c, "div", []any{1, 0})
	if !errors.Is(err, demo.ErrDivideByZero) {
		t.Errorf("div err = %v, want ErrDivideByZero", err)
	}
}

func TestTryCall(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{}
	if _, ok, err := d.TryCall(c, "missing", nil); ok || err != nil {
		t.Errorf("TryCall(missing) = %v, %v", ok, err)
	}
	if _, ok, err := d.TryCall(c, "add", []any{"x"}); ok || err != nil {
		t.Errorf("TryCall(add, x) = %v, %v", ok, err)
	}
	if _, ok, err := d.TryCall(c, "div", []any{1, 0}); ok || !errors.Is(err, demo.ErrDivideByZero) {
		t.Errorf("TryCall(div) = %v, %v", ok, err)
	}
	v, ok, err := d.TryCall(c, "add", []any{1, 1})
	if !ok || err != nil || v != 2 {
		t.Errorf("TryCall(add) = %v, %v, %v", v, ok, err)
	}
}

func TestCallStatic(t *testing.T) {
	d := newDispatcher()
	v, err := d.CallStatic(demo.Tables().Calc, "max", []any{3, 8})
	if err != nil || v != 8 {
		t.Errorf("max(3, 8) = %v, %v; want 8", v, err)
	}
	_, err = d.CallStatic(demo.Tables().Calc, "add", []any{1})
	if !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("instance method via CallStatic err = %v, want ErrNotFound", err)
	}
}

func TestCall_SkipGenericCheck(t *testing.T) {
	box, err := demo.Registry().CreateInstance(demo.BoxStringID, []any{"a"}, false)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	b := box.(meta.Accessible)

	d := newDispatcher()
	if _, err := d.Call(b, "put", []any{42}); !errors.Is(err, dispatch.ErrArgumentMismatch) {
		t.Errorf("put(42) err = %v, want ErrArgumentMismatch", err)
	}
	if _, err := d.Call(b, "put", []any{42}, dispatch.SkipGenericCheck(true)); err != nil {
		t.Fatalf("put(42) with skip: %v", err)
	}
	if v, _ := d.Get(b, "value"); v != "42" {
		t.Errorf("value = %v, want 42", v)
	}

	skipping := newDispatcher(dispatch.WithSkipGenericCheck(true))
	if _, err := skipping.Call(b, "put", []any{7}); err != nil {
		t.Errorf("dispatcher default skip: %v", err)
	}
}

func TestPreconditions(t *testing.T) {
	d := newDispatcher()
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil receiver get", func() { d.Get(nil, "x") }},
		{"empty name set", func() { d.Set(&demo.Point{}, "", 1) }},
		{"nil receiver call", func() { d.Call(nil, "add", nil) }},
		{"nil type static", func() { d.CallStatic(nil, "max", nil) }},
		{"no descriptor", func() { d.Get(noDescriptor{}, "x") }},
		{"typed nil receiver get", func() { d.Get((*demo.Point)(nil), "x") }},
		{"typed nil receiver call", func() { d.Call((*demo.Box[string])(nil), "isEmpty", nil) }},
		{"descriptor panics", func() { d.Has(brokenDescriptor{}, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				pv, ok := r.(dispatch.PreconditionViolation)
				if !ok {
					t.Fatalf("recovered %v, want PreconditionViolation", r)
				}
				if !errors.Is(pv, dispatch.ErrPrecondition) {
					t.Errorf("violation does not wrap ErrPrecondition: %v", pv)
				}
			}()
			tt.fn()
		})
	}
}

type noDescriptor struct{}

func (noDescriptor) Descriptor() *meta.Type { return nil }

type brokenDescriptor struct{}

func (brokenDescriptor) Descriptor() *meta.Type { panic("tables not built") }

func TestCallAsync(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{Acc: 3}
	v, err := d.CallAsync(c, "fetch", []any{"k"}).Await(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if v != "k=3" {
		t.Errorf("fetch(k) = %v, want k=3", v)
	}

	v, err = d.CallAsync(c, "double", []any{21}).Await(context.Background())
	if err != nil || v != 42 {
		t.Errorf("double(21) = %v, %v; want 42", v, err)
	}
}

func TestCallAsync_Failures(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{}
	ctx := context.Background()

	tests := []struct {
		name string
		recv meta.Accessible
		mem  string
		args []any
		want error
	}{
		{"sync only", c, "add", []any{1}, dispatch.ErrUnsupported},
		{"missing", c, "nope", nil, dispatch.ErrNotFound},
		{"mismatch", c, "fetch", []any{1}, dispatch.ErrArgumentMismatch},
		{"nil receiver", nil, "fetch", []any{"k"}, dispatch.ErrPrecondition},
		{"empty name", c, "", nil, dispatch.ErrPrecondition},
		{"typed nil receiver", (*demo.Box[string])(nil), "isEmpty", nil, dispatch.ErrPrecondition},
		{"typed nil calc", (*demo.Calc)(nil), "fetch", []any{"k"}, dispatch.ErrPrecondition},
		{"descriptor panics", brokenDescriptor{}, "fetch", nil, dispatch.ErrPrecondition},
	}
	for _, tt := range tests {
		_, err := d.CallAsync(tt.recv, tt.mem, tt.args).Await(ctx)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestCallAll(t *testing.T) {
	d := newDispatcher()
	c := &demo.Calc{Acc: 1}
	got, err := d.CallAll(context.Background(), []dispatch.Invocation{
		{Recv: c, Name: "double", Args: []any{1}},
		{Recv: c, Name: "double", Args: []any{2}},
		{Recv: c, Name: "fetch", Args: []any{"a"}},
	})
	if err != nil {
		t.Fatalf("CallAll: %v", err)
	}
	want := []any{2, 4, "a=1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	_, err = d.CallAll(context.Background(), []dispatch.Invocation{
		{Recv: c, Name: "double", Args: []any{1}},
		{Recv: c, Name: "add", Args: []any{1}},
	})
	if !errors.Is(err, dispatch.ErrUnsupported) {
		t.Errorf("CallAll err = %v, want ErrUnsupported", err)
	}
}

func TestWithConfig_RequireMarkers(t *testing.T) {
	cfg := config.Default()
	cfg.RequireMarkers = true
	d := newDispatcher(dispatch.WithConfig(cfg))

	if _, err := d.Get(&demo.Point{X: 1}, "x"); err != nil {
		t.Fatalf("marked type rejected: %v", err)
	}
	defer func() {
		if _, ok := recover().(dispatch.PreconditionViolation); !ok {
			t.Fatal("expected PreconditionViolation for unmarked type")
		}
	}()
	d.Get(demo.Pair{First: 1}, "first")
}

func TestWithLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	d := newDispatcher(dispatch.WithLogger(log.New(&buf, "", 0)))
	d.Call(&demo.Calc{}, "add", []any{1})
	d.Call(&demo.Calc{}, "nope", nil)
	out := buf.String()
	if !strings.Contains(out, config.LogPrefix+"call Calc.add/1: overload 0") {
		t.Errorf("missing resolution trace in %q", out)
	}
	if !strings.Contains(out, "Calc.nope: not found") {
		t.Errorf("missing not-found trace in %q", out)
	}

	buf.Reset()
	h := d.CallAsync(&demo.Calc{}, "double", []any{2})
	if _, err := h.Await(context.Background()); err != nil {
		t.Fatalf("double: %v", err)
	}
	if want := "call async Calc.double: handle " + h.ID().String(); !strings.Contains(buf.String(), want) {
		t.Errorf("missing %q in %q", want, buf.String())
	}
}

func TestWithConfig_TraceOptionOrder(t *testing.T) {
	traceOn := config.Default()
	traceOn.Trace = true

	tests := []struct {
		name  string
		opts  func(l *log.Logger) []dispatch.Option
		trace bool
	}{
		{"logger then config off", func(l *log.Logger) []dispatch.Option {
			return []dispatch.Option{dispatch.WithLogger(l), dispatch.WithConfig(config.Default())}
		}, false},
		{"config off then logger", func(l *log.Logger) []dispatch.Option {
			return []dispatch.Option{dispatch.WithConfig(config.Default()), dispatch.WithLogger(l)}
		}, false},
		{"config on then logger", func(l *log.Logger) []dispatch.Option {
			return []dispatch.Option{dispatch.WithConfig(traceOn), dispatch.WithLogger(l)}
		}, true},
		{"logger then config on", func(l *log.Logger) []dispatch.Option {
			return []dispatch.Option{dispatch.WithLogger(l), dispatch.WithConfig(traceOn)}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			d := newDispatcher(tt.opts(log.New(&buf, "", 0))...)
			d.Call(&demo.Calc{}, "add", []any{1})
			if got := buf.Len() > 0; got != tt.trace {
				t.Errorf("traced = %v, want %v (output %q)", got, tt.trace, buf.String())
			}
		})
	}
}
