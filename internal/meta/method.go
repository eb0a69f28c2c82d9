package meta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/accessor/internal/async"
	"github.com/funvibe/accessor/internal/types"
)

// Invoke performs a synchronous call. recv is nil for constructors and
// static methods. args is the resolved list indexed by ordinal; raw is
// the caller's original list, passed through so *Ref outputs can be
// written back.
type Invoke func(recv any, args []CheckedArgument, raw []any) (any, error)

// InvokeAsync performs an asynchronous call with the same arguments as Invoke.
type InvokeAsync func(recv any, args []CheckedArgument, raw []any) *async.Handle[any]

// Method describes a method or a constructor.
type Method struct {
	Name    string
	Params  []Parameter
	Returns types.ID

	// Static methods and constructors are invoked without a receiver.
	Static bool

	// MinRequired counts parameters that are neither defaulted nor variadic.
	MinRequired int
	// MaxCount is the total parameter count.
	MaxCount int

	Invoke      Invoke
	InvokeAsync InvokeAsync
}

// NewMethod sorts params by ordinal, checks that ordinals are unique and
// contiguous from 0, and computes the count thresholds.
func NewMethod(name string, params []Parameter, invoke Invoke, invokeAsync InvokeAsync) (*Method, error) {
	ps := make([]Parameter, len(params))
	copy(ps, params)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Ordinal < ps[j].Ordinal })

	m := &Method{
		Name:        name,
		Params:      ps,
		MaxCount:    len(ps),
		Invoke:      invoke,
		InvokeAsync: invokeAsync,
	}
	for i := range ps {
		if ps[i].Ordinal != i {
			return nil, fmt.Errorf("method %s: parameter %q has ordinal %d, want %d",
				name, ps[i].Name, ps[i].Ordinal, i)
		}
		if !ps[i].Optional() {
			m.MinRequired++
		}
	}
	return m, nil
}

// MustMethod is like NewMethod but panics on malformed parameter lists.
// Generated tables use it at init time.
func MustMethod(name string, params []Parameter, invoke Invoke, invokeAsync InvokeAsync) *Method {
	m, err := NewMethod(name, params, invoke, invokeAsync)
	if err != nil {
		panic(err)
	}
	return m
}

// Callable reports whether the method has a synchronous closure.
func (m *Method) Callable() bool { return m.Invoke != nil }

// CallableAsync reports whether the method has an asynchronous closure.
func (m *Method) CallableAsync() bool { return m.InvokeAsync != nil }

// Signature renders the method as name(p1, p2) ret.
func (m *Method) Signature() string {
	var sb strings.Builder
	if m.Static {
		sb.WriteString("static ")
	}
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.Params[i].String())
	}
	sb.WriteByte(')')
	if m.Returns != "" {
		sb.WriteByte(' ')
		sb.WriteString(string(m.Returns))
	}
	return sb.String()
}
