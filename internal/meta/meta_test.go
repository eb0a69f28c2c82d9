package meta

import (
	"strings"
	"testing"

	"github.com/funvibe/accessor/internal/types"
)

func TestNewMethod_Thresholds(t *testing.T) {
	m, err := NewMethod("add", []Parameter{
		{Name: "b", Type: types.Int, Ordinal: 1, HasDefault: true, Default: 10, ImplicitDefault: true},
		{Name: "a", Type: types.Int, Ordinal: 0},
	}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.MinRequired != 1 || m.MaxCount != 2 {
		t.Errorf("MinRequired/MaxCount = %d/%d, want 1/2", m.MinRequired, m.MaxCount)
	}
	if m.Params[0].Name != "a" {
		t.Errorf("params not sorted by ordinal: first = %q", m.Params[0].Name)
	}
}

func TestNewMethod_OrdinalGap(t *testing.T) {
	_, err := NewMethod("f", []Parameter{
		{Name: "a", Ordinal: 0},
		{Name: "c", Ordinal: 2},
	}, nil, nil)
	if err == nil {
		t.Fatal("expected error for non-contiguous ordinals")
	}
	if !strings.Contains(err.Error(), "ordinal 2") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewMethod_DuplicateOrdinal(t *testing.T) {
	_, err := NewMethod("f", []Parameter{
		{Name: "a", Ordinal: 0},
		{Name: "b", Ordinal: 0},
	}, nil, nil)
	if err == nil {
		t.Fatal("expected error for duplicate ordinals")
	}
}

func TestMustMethod_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustMethod("f", []Parameter{{Name: "a", Ordinal: 3}}, nil, nil)
}

func TestMethodSignature(t *testing.T) {
	m := MustMethod("swap", []Parameter{
		{Name: "a", Type: types.Int, Ordinal: 0, Mode: ByRef},
		{Name: "b", Type: types.Int, Ordinal: 1, Mode: OutOnly},
		{Name: "c", Type: types.String, Ordinal: 2, HasDefault: true, Default: "x"},
	}, nil, nil)
	m.Returns = types.Bool
	want := "swap(ref a int, out b int, c string = x) bool"
	if got := m.Signature(); got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
}

func TestTypeBuilder_MethodGroup(t *testing.T) {
	first := MustMethod("f", nil, nil, nil)
	second := MustMethod("f", []Parameter{{Name: "x", Type: types.Int}}, nil, nil)
	typ := NewTypeBuilder("T", types.ShapeClass).
		Field("x", types.Int, nil, nil).
		Method(first).
		Method(second).
		MustBuild()

	m, ok := typ.Member("f")
	if !ok {
		t.Fatal("member f not found")
	}
	if m.Kind != KindMethodGroup {
		t.Errorf("kind = %s, want method group", m.Kind)
	}
	if len(m.Methods) != 2 || m.Methods[0] != first || m.Methods[1] != second {
		t.Error("overloads not kept in declaration order")
	}
	x, _ := typ.Member("x")
	if !x.Inert() {
		t.Error("field without closures should be inert")
	}
	if got := typ.MemberNames(); len(got) != 2 || got[0] != "f" || got[1] != "x" {
		t.Errorf("MemberNames() = %v", got)
	}
}

func TestTypeBuilder_Errors(t *testing.T) {
	_, err := NewTypeBuilder("T", types.ShapeClass).
		Field("x", types.Int, nil, nil).
		Property("x", types.Int, nil, nil).
		Build()
	if err == nil || !strings.Contains(err.Error(), "duplicate member") {
		t.Errorf("err = %v, want duplicate member", err)
	}

	_, err = NewTypeBuilder("T", types.ShapeClass).
		Field("f", types.Int, nil, nil).
		Method(MustMethod("f", nil, nil, nil)).
		Build()
	if err == nil || !strings.Contains(err.Error(), "collides") {
		t.Errorf("err = %v, want collision", err)
	}
}

func TestTypeBuilder_Facets(t *testing.T) {
	typ := NewTypeBuilder("Pair<int,string>", types.ShapeTuple).
		Generic(types.Int, types.String).
		Tuple(TupleElement{Name: "first", Type: types.Int}, TupleElement{Name: "second", Type: types.String}).
		Async(types.AsyncNone).
		Mark("Accessor").
		Constructor(MustMethod("new", nil, nil, nil)).
		MustBuild()
	if !typ.IsGeneric() || len(typ.Tuple) != 2 {
		t.Error("generic args or tuple elements missing")
	}
	if !typ.HasMarker("Accessor") || typ.HasMarker("GeneratorType") {
		t.Error("marker lookup wrong")
	}
	if !typ.Constructors[0].Static {
		t.Error("constructors should be static")
	}
}

func TestParameterHelpers(t *testing.T) {
	p := Parameter{Name: "rest", Type: types.Any, ImplicitDefault: true}
	if !p.Optional() {
		t.Error("implicitly defaulted parameter should be optional")
	}
	if (&Parameter{Mode: ReadOnlyRef}).ByReference() {
		t.Error("read-only refs are not passed through *Ref")
	}
	out := NewOut(types.Int)
	if out.Mode != OutOnly || out.Value != nil {
		t.Errorf("NewOut() = %+v", out)
	}
	vals := Values([]CheckedArgument{{Value: 1}, {Value: "a", ImplicitDefault: true}})
	if len(vals) != 2 || vals[0] != 1 || vals[1] != "a" {
		t.Errorf("Values() = %v", vals)
	}
}
