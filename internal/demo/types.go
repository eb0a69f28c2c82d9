// Package demo contains a small set of types together with the tables a
// generator would emit for them. The tests and the accessor CLI use it
// as a fixture.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

// Type IDs of the demo types.
const (
	PointID     types.ID = "Point"
	CalcID      types.ID = "Calc"
	BoxID       types.ID = "Box<T>"
	BoxStringID types.ID = "Box<string>"
	BoxParamID  types.ID = "T"
	PairID      types.ID = "Pair<int,int>"
	TaskID      types.ID = "Task<string>"
	HandlerID   types.ID = "Handler"
)

// Handler is notified when a Point moves.
type Handler func(p *Point)

func (Handler) TypeID() types.ID { return HandlerID }

// Point is a mutable 2D point.
type Point struct {
	X, Y  int
	moved []Handler
}

func (p *Point) Descriptor() *meta.Type { return Tables().Point }
func (p *Point) TypeID() types.ID       { return PointID }

func (p *Point) translate(dx, dy int) {
	p.X += dx
	p.Y += dy
	for _, h := range p.moved {
		h(p)
	}
}

// Pair is the tuple returned by Point.coords.
type Pair struct {
	First, Second int
}

func (Pair) TypeID() types.ID       { return PairID }
func (Pair) Descriptor() *meta.Type { return Tables().Pair }

// Calc is a calculator with an accumulator.
type Calc struct {
	Acc int
}

func (c *Calc) Descriptor() *meta.Type { return Tables().Calc }
func (c *Calc) TypeID() types.ID       { return CalcID }

// fetch simulates a lookup that completes later.
func (c *Calc) fetch(ctx context.Context, key string) (string, error) {
	select {
	case <-time.After(time.Millisecond):
		return fmt.Sprintf("%s=%d", key, c.Acc), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Box holds a single value. Only the instantiations listed in the tables
// are reachable through the registry.
type Box[T any] struct {
	Value T
	desc  *meta.Type
}

func (b *Box[T]) Descriptor() *meta.Type {
	if b == nil {
		return nil
	}
	return b.desc
}

func (b *Box[T]) TypeID() types.ID {
	if b == nil || b.desc == nil {
		return types.Unknown
	}
	return b.desc.ID
}
