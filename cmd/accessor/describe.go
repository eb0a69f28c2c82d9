package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/accessor/internal/generic"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

func describeType(w io.Writer, t *meta.Type, reg *generic.Registry) {
	header := fmt.Sprintf("%s %s", t.Shape, bold(string(t.ID)))
	if len(t.GenericArgs) > 0 {
		header += dim(fmt.Sprintf(" args=%v", t.GenericArgs))
	}
	if t.Async != types.AsyncNone {
		header += dim(" async=" + t.Async.String())
	}
	if len(t.Markers) > 0 {
		header += dim(" [" + strings.Join(t.Markers, ", ") + "]")
	}
	if reg != nil && reg.IsCustom(t.ID) {
		header += yellow(" custom")
	}
	fmt.Fprintln(w, header)

	for _, e := range t.Tuple {
		fmt.Fprintf(w, "  %s %s %s\n", dim("elem"), e.Name, e.Type)
	}
	for _, c := range t.Constructors {
		fmt.Fprintf(w, "  %s %s\n", cyan("ctor"), c.Signature())
	}
	for _, name := range t.MemberNames() {
		m, _ := t.Member(name)
		switch {
		case m.Callable():
			for _, mm := range m.Methods {
				fmt.Fprintf(w, "  %s %s%s\n", cyan(m.Kind.String()), mm.Signature(), invokeFlags(mm))
			}
		default:
			fmt.Fprintf(w, "  %s %s %s%s\n", cyan(m.Kind.String()), name, m.Type, accessFlags(m))
		}
	}
}

func accessFlags(m *meta.Member) string {
	switch {
	case m.Inert():
		return dim(" (inert)")
	case !m.Settable():
		return dim(" (get)")
	case !m.Gettable():
		return dim(" (set)")
	}
	return dim(" (get, set)")
}

func invokeFlags(m *meta.Method) string {
	var flags []string
	if m.Callable() {
		flags = append(flags, "sync")
	}
	if m.CallableAsync() {
		flags = append(flags, "async")
	}
	if len(flags) == 0 {
		return red(" (not invocable)")
	}
	return dim(" (" + strings.Join(flags, ", ") + ")")
}
