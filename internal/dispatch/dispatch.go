// Package dispatch implements named member access and method invocation
// over precomputed descriptors.
//
// Structural failures (unknown member, wrong kind, no matching overload)
// come back as *AccessError or *CallError. A nil receiver, an empty
// member name or a receiver without a descriptor is a caller bug: the
// synchronous entry points panic with PreconditionViolation and the
// asynchronous ones return a faulted handle.
package dispatch

import (
	"fmt"
	"log"
	"reflect"

	"github.com/funvibe/accessor/internal/config"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/resolver"
	"github.com/funvibe/accessor/internal/types"
)

// Dispatcher resolves member names against a receiver's descriptor and
// runs the stored closures. It holds no mutable state and may be shared.
type Dispatcher struct {
	types            *types.Universe
	skipGenericCheck bool
	requireMarker    string
	logger           *log.Logger
	quiet            bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSkipGenericCheck sets the default for skipping checks on
// parameters that involve unresolved type parameters.
func WithSkipGenericCheck(skip bool) Option {
	return func(d *Dispatcher) { d.skipGenericCheck = skip }
}

// WithLogger enables trace output. A nil logger disables it.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithConfig applies settings loaded from accessor.yaml. Trace output
// needs both trace: true and a logger, in either option order.
func WithConfig(cfg *config.Config) Option {
	return func(d *Dispatcher) {
		if cfg == nil {
			return
		}
		d.skipGenericCheck = cfg.SkipGenericCheck
		if cfg.RequireMarkers {
			d.requireMarker = cfg.Markers.Accessor
			if d.requireMarker == "" {
				d.requireMarker = config.AccessorMarker
			}
		} else {
			d.requireMarker = ""
		}
		d.quiet = !cfg.Trace
	}
}

// New creates a dispatcher over the type universe u.
func New(u *types.Universe, opts ...Option) *Dispatcher {
	if u == nil {
		panic(PreconditionViolation{Op: "dispatch.New", Reason: "nil universe"})
	}
	d := &Dispatcher{types: u}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Types returns the universe the dispatcher checks arguments against.
func (d *Dispatcher) Types() *types.Universe { return d.types }

// Resolver returns a resolver using skip for unresolved generic parameters.
func (d *Dispatcher) Resolver(skip bool) *resolver.Resolver {
	return resolver.New(d.types, skip)
}

func (d *Dispatcher) tracef(format string, args ...any) {
	if d.logger != nil && !d.quiet {
		d.logger.Printf(config.LogPrefix+format, args...)
	}
}

// descriptor validates the receiver and name and returns the receiver's
// descriptor, or the violation to report. A typed nil pointer counts as a
// nil receiver, and a Descriptor method that panics is reported rather
// than propagated.
func (d *Dispatcher) descriptor(op string, recv meta.Accessible, name string) (t *meta.Type, pv *PreconditionViolation) {
	if isNil(recv) {
		return nil, &PreconditionViolation{Op: op, Reason: "nil receiver"}
	}
	if name == "" {
		return nil, &PreconditionViolation{Op: op, Reason: "empty member name"}
	}
	t, pv = descriptorOf(op, recv)
	if pv != nil {
		return nil, pv
	}
	if t == nil {
		return nil, &PreconditionViolation{Op: op, Reason: "receiver has no descriptor"}
	}
	if d.requireMarker != "" && !t.HasMarker(d.requireMarker) {
		return nil, &PreconditionViolation{Op: op, Reason: "type " + string(t.ID) + " is not marked " + d.requireMarker}
	}
	return t, nil
}

func descriptorOf(op string, recv meta.Accessible) (t *meta.Type, pv *PreconditionViolation) {
	defer func() {
		if r := recover(); r != nil {
			t, pv = nil, &PreconditionViolation{Op: op, Reason: fmt.Sprintf("descriptor of %T panicked: %v", recv, r)}
		}
	}()
	return recv.Descriptor(), nil
}

func isNil(recv meta.Accessible) bool {
	if recv == nil {
		return true
	}
	switch v := reflect.ValueOf(recv); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (d *Dispatcher) mustDescriptor(op string, recv meta.Accessible, name string) *meta.Type {
	t, pv := d.descriptor(op, recv, name)
	if pv != nil {
		panic(*pv)
	}
	return t
}

// Has reports whether the receiver's type declares a member named name.
func (d *Dispatcher) Has(recv meta.Accessible, name string) bool {
	t := d.mustDescriptor("has", recv, name)
	_, ok := t.Member(name)
	return ok
}
