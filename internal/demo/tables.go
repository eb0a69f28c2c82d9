package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/funvibe/accessor/internal/async"
	"github.com/funvibe/accessor/internal/config"
	"github.com/funvibe/accessor/internal/generic"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

// ErrDivideByZero is returned by Calc.div.
var ErrDivideByZero = errors.New("divide by zero")

// TypeTables holds every descriptor of the demo package.
type TypeTables struct {
	Universe  *types.Universe
	Point     *meta.Type
	Calc      *meta.Type
	BoxString *meta.Type
	Pair      *meta.Type
	Task      *meta.Type
}

// Lookup returns the descriptor registered under id.
func (t *TypeTables) Lookup(id types.ID) (*meta.Type, bool) {
	for _, d := range t.All() {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// All returns every descriptor.
func (t *TypeTables) All() []*meta.Type {
	return []*meta.Type{t.Point, t.Calc, t.BoxString, t.Pair, t.Task}
}

var (
	tablesOnce sync.Once
	tables     *TypeTables
)

// Tables returns the demo descriptors, building them on first use.
func Tables() *TypeTables {
	tablesOnce.Do(func() {
		tables = buildTables()
	})
	return tables
}

// Registry returns the generic-construction registry of the demo types.
var Registry = generic.Lazy(buildRegistry)

func buildUniverse() *types.Universe {
	u := types.NewUniverse()
	u.Define(&types.Info{ID: PointID, Shape: types.ShapeClass, Bases: []types.ID{types.Any}})
	u.Define(&types.Info{ID: CalcID, Shape: types.ShapeClass, Bases: []types.ID{types.Any}})
	// T as seen from Box<string>: constrained to the argument it was closed over.
	u.Define(&types.Info{ID: BoxParamID, Shape: types.ShapeTypeParameter, Bases: []types.ID{types.String}})
	u.Define(&types.Info{ID: BoxID, Shape: types.ShapeClass, Bases: []types.ID{types.Any}})
	u.Define(&types.Info{ID: BoxStringID, Shape: types.ShapeClass, Bases: []types.ID{types.Any},
		Open: BoxID, Args: []types.ID{types.String}})
	u.Define(&types.Info{ID: PairID, Shape: types.ShapeTuple, ValueKind: true, Bases: []types.ID{types.Any}})
	u.Define(&types.Info{ID: TaskID, Shape: types.ShapeClass, Bases: []types.ID{types.Any}})
	u.Define(&types.Info{ID: HandlerID, Shape: types.ShapeDelegate, Bases: []types.ID{types.Any}})
	return u
}

func buildTables() *TypeTables {
	return &TypeTables{
		Universe:  buildUniverse(),
		Point:     pointType(),
		Calc:      calcType(),
		BoxString: boxStringType(),
		Pair: meta.NewTypeBuilder(PairID, types.ShapeTuple).
			Generic(types.Int, types.Int).
			Tuple(meta.TupleElement{Name: "first", Type: types.Int}, meta.TupleElement{Name: "second", Type: types.Int}).
			Field("first", types.Int, func(recv any) (any, error) {
				p, err := recvAs[Pair](recv)
				return p.First, err
			}, nil).
			Field("second", types.Int, func(recv any) (any, error) {
				p, err := recvAs[Pair](recv)
				return p.Second, err
			}, nil).
			MustBuild(),
		Task: meta.NewTypeBuilder(TaskID, types.ShapeClass).
			Generic(types.String).
			Async(types.AsyncSingleResult).
			MustBuild(),
	}
}

func buildRegistry() *generic.Registry {
	return NewRegistry()
}

// NewRegistry builds a fresh registry of the demo types with opts
// applied. Registry returns a shared default-configured instance.
func NewRegistry(opts ...generic.Option) *generic.Registry {
	t := Tables()
	return generic.NewRegistry(t.Universe, map[types.ID]*generic.Entry{
		types.String: {
			MakeGenerics: map[types.ID]types.ID{BoxID: BoxStringID},
			Shape:        types.ShapeClass,
		},
		types.Int: {
			Shape: types.ShapeStruct,
		},
		BoxStringID: {
			Constructors: t.BoxString.Constructors,
			Custom:       true,
			Type:         t.BoxString,
			Shape:        types.ShapeClass,
		},
		PointID: {
			Constructors: t.Point.Constructors,
			Custom:       true,
			Type:         t.Point,
			Shape:        types.ShapeClass,
		},
		CalcID: {
			Constructors: t.Calc.Constructors,
			Custom:       true,
			Type:         t.Calc,
			Shape:        types.ShapeClass,
		},
	}, opts...)
}

func recvAs[T any](recv any) (T, error) {
	switch r := recv.(type) {
	case T:
		return r, nil
	case *T:
		if r != nil {
			return *r, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("receiver %T is not %T", recv, zero)
}

func recvPtr[T any](recv any) (*T, error) {
	r, ok := recv.(*T)
	var zero T
	switch {
	case ok && r != nil:
		return r, nil
	case ok, recv == nil:
		return nil, fmt.Errorf("nil *%T receiver", zero)
	}
	return nil, fmt.Errorf("receiver %T is not *%T", recv, zero)
}

func intValue(v any) (int, error) {
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("expected int, got %T", v)
	}
	return n, nil
}

func param(name string, t types.ID, ordinal int) meta.Parameter {
	return meta.Parameter{Name: name, Type: t, Ordinal: ordinal, ValueKind: t == types.Int || t == types.Float64}
}

func defaulted(p meta.Parameter, v any) meta.Parameter {
	p.HasDefault = true
	p.Default = v
	p.ImplicitDefault = true
	return p
}

func passed(p meta.Parameter, mode meta.PassMode) meta.Parameter {
	p.Mode = mode
	return p
}

func pointType() *meta.Type {
	return meta.NewTypeBuilder(PointID, types.ShapeClass).
		Mark(config.AccessorMarker, config.GeneratorTypeMarker).
		Field("x", types.Int,
			func(recv any) (any, error) {
				p, err := recvPtr[Point](recv)
				if err != nil {
					return nil, err
				}
				return p.X, nil
			},
			func(recv any, v any) error {
				p, err := recvPtr[Point](recv)
				if err != nil {
					return err
				}
				n, err := intValue(v)
				if err != nil {
					return err
				}
				p.X = n
				return nil
			}).
		Field("y", types.Int,
			func(recv any) (any, error) {
				p, err := recvPtr[Point](recv)
				if err != nil {
					return nil, err
				}
				return p.Y, nil
			},
			func(recv any, v any) error {
				p, err := recvPtr[Point](recv)
				if err != nil {
					return err
				}
				n, err := intValue(v)
				if err != nil {
					return err
				}
				p.Y = n
				return nil
			}).
		Property("lengthSquared", types.Int, func(recv any) (any, error) {
			p, err := recvPtr[Point](recv)
			if err != nil {
				return nil, err
			}
			return p.X*p.X + p.Y*p.Y, nil
		}, nil).
		Property("origin", PointID, nil, nil).
		Event("moved", HandlerID,
			func(recv any) (any, error) {
				p, err := recvPtr[Point](recv)
				if err != nil {
					return nil, err
				}
				return len(p.moved), nil
			},
			func(recv any, v any) error {
				p, err := recvPtr[Point](recv)
				if err != nil {
					return err
				}
				h, ok := v.(Handler)
				if !ok {
					return fmt.Errorf("expected Handler, got %T", v)
				}
				p.moved = append(p.moved, h)
				return nil
			}).
		Method(meta.MustMethod("translate", []meta.Parameter{
			param("dx", types.Int, 0),
			defaulted(param("dy", types.Int, 1), 0),
		}, func(recv any, args []meta.CheckedArgument, _ []any) (any, error) {
			p, err := recvPtr[Point](recv)
			if err != nil {
				return nil, err
			}
			p.translate(args[0].Value.(int), args[1].Value.(int))
			return nil, nil
		}, nil)).
		Method(meta.MustMethod("scale", []meta.Parameter{
			param("f", types.Int, 0),
		}, func(recv any, args []meta.CheckedArgument, _ []any) (any, error) {
			p, err := recvPtr[Point](recv)
			if err != nil {
				return nil, err
			}
			f := args[0].Value.(int)
			p.X, p.Y = p.X*f, p.Y*f
			return "int", nil
		}, nil)).
		Method(meta.MustMethod("scale", []meta.Parameter{
			param("f", types.Float64, 0),
		}, func(recv any, args []meta.CheckedArgument, _ []any) (any, error) {
			p, err := recvPtr[Point](recv)
			if err != nil {
				return nil, err
			}
			f := args[0].Value.(float64)
			p.X, p.Y = int(float64(p.X)*f), int(float64(p.Y)*f)
			return "float64", nil
		}, nil)).
		Method(returning(meta.MustMethod("coords", nil, func(recv any, _ []meta.CheckedArgument, _ []any) (any, error) {
			p, err := recvPtr[Point](recv)
			if err != nil {
				return nil, err
			}
			return Pair{First: p.X, Second: p.Y}, nil
		}, nil), PairID)).
		Constructor(meta.MustMethod("new", nil, func(any, []meta.CheckedArgument, []any) (any, error) {
			return &Point{}, nil
		}, nil)).
		Constructor(meta.MustMethod("new", []meta.Parameter{
			param("x", types.Int, 0),
			param("y", types.Int, 1),
		}, func(_ any, args []meta.CheckedArgument, _ []any) (any, error) {
			return &Point{X: args[0].Value.(int), Y: args[1].Value.(int)}, nil
		}, nil)).
		MustBuild()
}

func returning(m *meta.Method, t types.ID) *meta.Method {
	m.Returns = t
	return m
}

func calcType() *meta.Type {
	withCalc := func(fn func(c *Calc, args []meta.CheckedArgument, raw []any) (any, error)) meta.Invoke {
		return func(recv any, args []meta.CheckedArgument, raw []any) (any, error) {
			c, err := recvPtr[Calc](recv)
			if err != nil {
				return nil, err
			}
			return fn(c, args, raw)
		}
	}

	add := meta.MustMethod("add", []meta.Parameter{
		param("a", types.Int, 0),
		defaulted(param("b", types.Int, 1), 10),
	}, withCalc(func(c *Calc, args []meta.CheckedArgument, _ []any) (any, error) {
		c.Acc = args[0].Value.(int) + args[1].Value.(int)
		return c.Acc, nil
	}), nil)

	// swap moves a into the accumulator and hands the old accumulator back through a.
	// The old value of a is written to b.
	swap := meta.MustMethod("swap", []meta.Parameter{
		passed(param("a", types.Int, 0), meta.ByRef),
		passed(param("b", types.Int, 1), meta.OutOnly),
	}, withCalc(func(c *Calc, args []meta.CheckedArgument, raw []any) (any, error) {
		a := args[0].Value.(int)
		raw[0].(*meta.Ref).Value = c.Acc
		raw[1].(*meta.Ref).Value = a
		c.Acc = a
		return nil, nil
	}), nil)

	sum := meta.MustMethod("sum", []meta.Parameter{{
		Name: "values", Type: types.Any, Ordinal: 0,
		ImplicitDefault: true, Default: []int(nil),
	}}, withCalc(func(c *Calc, args []meta.CheckedArgument, _ []any) (any, error) {
		values, ok := args[0].Value.([]int)
		if !ok && args[0].Value != nil {
			return nil, fmt.Errorf("sum: expected []int, got %T", args[0].Value)
		}
		total := 0
		for _, v := range values {
			total += v
		}
		c.Acc = total
		return total, nil
	}), nil)

	showAny := meta.MustMethod("show", []meta.Parameter{
		param("v", types.Any, 0),
	}, withCalc(func(_ *Calc, args []meta.CheckedArgument, _ []any) (any, error) {
		return fmt.Sprintf("any:%v", args[0].Value), nil
	}), nil)
	showInt := meta.MustMethod("show", []meta.Parameter{
		param("v", types.Int, 0),
	}, withCalc(func(_ *Calc, args []meta.CheckedArgument, _ []any) (any, error) {
		return fmt.Sprintf("int:%d", args[0].Value.(int)), nil
	}), nil)

	div := meta.MustMethod("div", []meta.Parameter{
		param("a", types.Int, 0),
		param("b", types.Int, 1),
	}, withCalc(func(_ *Calc, args []meta.CheckedArgument, _ []any) (any, error) {
		b := args[1].Value.(int)
		if b == 0 {
			return nil, ErrDivideByZero
		}
		return args[0].Value.(int) / b, nil
	}), nil)

	fetch := returning(meta.MustMethod("fetch", []meta.Parameter{
		param("key", types.String, 0),
	}, nil, func(recv any, args []meta.CheckedArgument, _ []any) *async.Handle[any] {
		c, err := recvPtr[Calc](recv)
		if err != nil {
			return async.Faulted[any](err)
		}
		key := args[0].Value.(string)
		return async.Go(func() (any, error) {
			return c.fetch(context.Background(), key)
		})
	}), TaskID)

	double := meta.MustMethod("double", []meta.Parameter{
		param("v", types.Int, 0),
	}, withCalc(func(_ *Calc, args []meta.CheckedArgument, _ []any) (any, error) {
		return args[0].Value.(int) * 2, nil
	}), func(_ any, args []meta.CheckedArgument, _ []any) *async.Handle[any] {
		v := args[0].Value.(int)
		return async.Go(func() (any, error) { return v * 2, nil })
	})

	maxOf := meta.MustMethod("max", []meta.Parameter{
		param("a", types.Int, 0),
		param("b", types.Int, 1),
	}, func(_ any, args []meta.CheckedArgument, _ []any) (any, error) {
		a, b := args[0].Value.(int), args[1].Value.(int)
		if a > b {
			return a, nil
		}
		return b, nil
	}, nil)
	maxOf.Static = true

	return meta.NewTypeBuilder(CalcID, types.ShapeClass).
		Mark(config.AccessorMarker, config.GeneratorTypeMarker).
		Property("acc", types.Int,
			func(recv any) (any, error) {
				c, err := recvPtr[Calc](recv)
				if err != nil {
					return nil, err
				}
				return c.Acc, nil
			},
			func(recv any, v any) error {
				c, err := recvPtr[Calc](recv)
				if err != nil {
					return err
				}
				n, err := intValue(v)
				if err != nil {
					return err
				}
				c.Acc = n
				return nil
			}).
		Method(add).
		Method(swap).
		Method(sum).
		Method(showAny).
		Method(showInt).
		Method(div).
		Method(fetch).
		Method(double).
		Method(maxOf).
		Method(meta.MustMethod("reset", nil, nil, nil)).
		Constructor(meta.MustMethod("new", []meta.Parameter{
			{Name: "acc", Type: types.Int, Ordinal: 0, ValueKind: true, HasDefault: true, Default: 0},
		}, func(_ any, args []meta.CheckedArgument, _ []any) (any, error) {
			return &Calc{Acc: args[0].Value.(int)}, nil
		}, func(_ any, args []meta.CheckedArgument, _ []any) *async.Handle[any] {
			return async.Completed[any](&Calc{Acc: args[0].Value.(int)})
		})).
		MustBuild()
}

func boxStringType() *meta.Type {
	var desc *meta.Type
	desc = meta.NewTypeBuilder(BoxStringID, types.ShapeClass).
		Mark(config.AccessorMarker, config.GeneratorTypeMarker).
		Generic(types.String).
		Property("value", types.String,
			func(recv any) (any, error) {
				b, err := recvPtr[Box[string]](recv)
				if err != nil {
					return nil, err
				}
				return b.Value, nil
			},
			func(recv any, v any) error {
				b, err := recvPtr[Box[string]](recv)
				if err != nil {
					return err
				}
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("expected string, got %T", v)
				}
				b.Value = s
				return nil
			}).
		Method(returning(meta.MustMethod("isEmpty", nil, func(recv any, _ []meta.CheckedArgument, _ []any) (any, error) {
			b, err := recvPtr[Box[string]](recv)
			if err != nil {
				return nil, err
			}
			return b.Value == "", nil
		}, nil), types.Bool)).
		Method(meta.MustMethod("put", []meta.Parameter{
			{Name: "v", Type: BoxParamID, Ordinal: 0, OpenGeneric: true},
		}, func(recv any, args []meta.CheckedArgument, _ []any) (any, error) {
			b, err := recvPtr[Box[string]](recv)
			if err != nil {
				return nil, err
			}
			b.Value = fmt.Sprint(args[0].Value)
			return nil, nil
		}, nil)).
		Constructor(meta.MustMethod("new", nil, func(any, []meta.CheckedArgument, []any) (any, error) {
			return &Box[string]{desc: desc}, nil
		}, nil)).
		Constructor(meta.MustMethod("new", []meta.Parameter{
			param("value", types.String, 0),
		}, func(_ any, args []meta.CheckedArgument, _ []any) (any, error) {
			return &Box[string]{Value: args[0].Value.(string), desc: desc}, nil
		}, nil)).
		MustBuild()
	return desc
}
