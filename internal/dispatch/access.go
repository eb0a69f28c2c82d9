package dispatch

import (
	"errors"

	"github.com/funvibe/accessor/internal/meta"
)

// Get reads the field, property or event called name.
func (d *Dispatcher) Get(recv meta.Accessible, name string) (any, error) {
	t := d.mustDescriptor("get", recv, name)
	m, ok := t.Member(name)
	if !ok || !m.Gettable() {
		d.tracef("get %s.%s: not found", t.ID, name)
		return nil, &AccessError{Op: "get", Type: t.ID, Member: name, Err: ErrNotFound}
	}
	v, err := m.Get(recv)
	if err != nil {
		return nil, &AccessError{Op: "get", Type: t.ID, Member: name, Err: err}
	}
	return v, nil
}

// Set writes v to the field, property or event called name. The setter
// closure decides how the receiver's storage is mutated.
func (d *Dispatcher) Set(recv meta.Accessible, name string, v any) error {
	t := d.mustDescriptor("set", recv, name)
	m, ok := t.Member(name)
	if !ok || !m.Settable() {
		d.tracef("set %s.%s: not found", t.ID, name)
		return &AccessError{Op: "set", Type: t.ID, Member: name, Err: ErrNotFound}
	}
	if err := m.Set(recv, v); err != nil {
		return &AccessError{Op: "set", Type: t.ID, Member: name, Err: err}
	}
	return nil
}

// TryGet is Get for speculative probing: ok is false when the member is
// missing or not readable. Errors raised by the getter itself are still
// returned.
func (d *Dispatcher) TryGet(recv meta.Accessible, name string) (v any, ok bool, err error) {
	v, err = d.Get(recv, name)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
