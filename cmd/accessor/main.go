// Command accessor inspects and exercises precomputed descriptor tables.
//
// Usage:
//
//	accessor [-v] types
//	accessor [-v] describe [type]
//	accessor [-v] new <type> [args...]
//	accessor [-v] get <type> <member>
//	accessor [-v] call <type> <method> [args...]
//	accessor [-v] closed <definition> <argument>
//
// Settings come from the nearest accessor.yaml. -v turns on trace output.
//
// Arguments are parsed as int, float, bool or string literals. "&v"
// passes v by reference and "out:<type>" passes an output slot; their
// final values are printed after the call.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/funvibe/accessor/internal/config"
	"github.com/funvibe/accessor/internal/demo"
	"github.com/funvibe/accessor/internal/dispatch"
	"github.com/funvibe/accessor/internal/generic"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usage = `usage: accessor [-v] <command> [args...]

commands:
  types                         list registered types
  describe [type]               print descriptors
  new <type> [args...]          construct an instance through the registry
  get <type> <member>           read a member of a default instance
  call <type> <method> [args]   call a method on a default instance
  closed <definition> <arg>     look up a precomputed generic instantiation
`

func run(args []string, stdout, stderr io.Writer) int {
	verbose := false
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-v", "--verbose":
			verbose = true
		case "-h", "--help":
			fmt.Fprint(stdout, usage)
			return 0
		default:
			fmt.Fprintf(stderr, "unknown flag %s\n%s", args[0], usage)
			return 2
		}
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.LoadOrDefault(".")
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", red("error:"), err)
		return 1
	}
	if verbose {
		cfg.Trace = true
	}
	logger := log.New(stderr, "", 0)
	c := &cli{
		out:  stdout,
		d:    dispatch.New(demo.Tables().Universe, dispatch.WithConfig(cfg), dispatch.WithLogger(logger)),
		reg:  demo.NewRegistry(generic.WithConfig(cfg), generic.WithLogger(logger)),
		skip: cfg.SkipGenericCheck,
	}

	if err := c.exec(args[0], args[1:]); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", red("error:"), err)
		return 1
	}
	return 0
}

type cli struct {
	out  io.Writer
	d    *dispatch.Dispatcher
	reg  *generic.Registry
	skip bool
}

func (c *cli) exec(cmd string, args []string) error {
	switch cmd {
	case "types":
		for _, id := range c.reg.IDs() {
			kind, _ := c.reg.Kind(id)
			fmt.Fprintf(c.out, "%-14s %s\n", id, dim(kind.String()))
		}
		return nil
	case "describe":
		return c.describe(args)
	case "new":
		if len(args) < 1 {
			return fmt.Errorf("new: missing type")
		}
		v, err := c.reg.CreateInstance(types.ID(args[0]), parseArgs(args[1:]), c.skip)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%+v\n", v)
		return nil
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("get: want <type> <member>")
		}
		recv, err := c.instance(args[0])
		if err != nil {
			return err
		}
		v, err := c.d.Get(recv, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%v\n", v)
		return nil
	case "call":
		if len(args) < 2 {
			return fmt.Errorf("call: want <type> <method> [args...]")
		}
		return c.call(args[0], args[1], args[2:])
	case "closed":
		if len(args) != 2 {
			return fmt.Errorf("closed: want <definition> <argument>")
		}
		id, ok := c.reg.GetClosedType(types.ID(args[0]), types.ID(args[1]))
		if !ok {
			fmt.Fprintln(c.out, dim("(not precomputed)"))
			return nil
		}
		fmt.Fprintln(c.out, id)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) describe(args []string) error {
	tabs := demo.Tables()
	if len(args) == 0 {
		for i, t := range tabs.All() {
			if i > 0 {
				fmt.Fprintln(c.out)
			}
			describeType(c.out, t, c.reg)
		}
		return nil
	}
	t, ok := tabs.Lookup(types.ID(args[0]))
	if !ok {
		return fmt.Errorf("describe: unknown type %s", args[0])
	}
	describeType(c.out, t, c.reg)
	return nil
}

func (c *cli) instance(id string) (meta.Accessible, error) {
	v, err := c.reg.CreateInstance(types.ID(id), nil, c.skip)
	if err != nil {
		return nil, err
	}
	recv, ok := v.(meta.Accessible)
	if !ok {
		return nil, fmt.Errorf("%s instances do not expose members", id)
	}
	return recv, nil
}

func (c *cli) call(typ, method string, rawArgs []string) error {
	recv, err := c.instance(typ)
	if err != nil {
		return err
	}
	args := parseArgs(rawArgs)

	v, err := c.d.Call(recv, method, args)
	if err != nil && errors.Is(err, dispatch.ErrUnsupported) {
		v, err = c.d.CallAsync(recv, method, args).Await(context.Background())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%v\n", v)
	for i, a := range args {
		if ref, ok := a.(*meta.Ref); ok {
			fmt.Fprintf(c.out, "  %s[%d] = %v\n", ref.Mode, i, ref.Value)
		}
	}
	return nil
}

func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		args[i] = parseArg(s)
	}
	return args
}

func parseArg(s string) any {
	if rest, ok := strings.CutPrefix(s, "&"); ok {
		v := parseArg(rest)
		return meta.NewRef(types.NewUniverse().TypeOf(v), v)
	}
	if rest, ok := strings.CutPrefix(s, "out:"); ok {
		return meta.NewOut(types.ID(rest))
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
