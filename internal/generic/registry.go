// Package generic maps generic definitions to their precomputed closed
// forms and constructs instances from registered constructor lists.
//
// A Registry is built once by generated code and read concurrently
// afterwards. Lookups that find nothing return ok=false: not every
// definition/argument pair is precomputed, so a miss is routine.
package generic

import (
	"context"
	"log"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/funvibe/accessor/internal/config"
	"github.com/funvibe/accessor/internal/meta"
	"github.com/funvibe/accessor/internal/types"
)

// Entry is the registry record of one type.
type Entry struct {
	// MakeGenerics maps a generic definition to its closed form when
	// instantiated with the entry's type as argument.
	MakeGenerics map[types.ID]types.ID

	// Constructors are tried in order by CreateInstance.
	Constructors []*meta.Method

	// Custom is true when the generator emitted metadata for the type.
	Custom bool
	// Type is the descriptor emitted for a custom type, if any.
	Type *meta.Type

	Shape types.Shape
}

// Registry is the immutable table of generator entries.
type Registry struct {
	types         *types.Universe
	entries       map[types.ID]*Entry
	requireMarker string
	logger        *log.Logger
	quiet         bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig applies settings loaded from accessor.yaml. With
// require_markers set, custom entries whose descriptor lacks the
// generator-type marker are left out of the registry.
func WithConfig(cfg *config.Config) Option {
	return func(r *Registry) {
		if cfg == nil {
			return
		}
		if cfg.RequireMarkers {
			r.requireMarker = cfg.Markers.GeneratorType
			if r.requireMarker == "" {
				r.requireMarker = config.GeneratorTypeMarker
			}
		} else {
			r.requireMarker = ""
		}
		r.quiet = !cfg.Trace
	}
}

// WithLogger enables trace output. A nil logger disables it.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry over u. The entries map is copied; the
// entries themselves must not be modified afterwards.
func NewRegistry(u *types.Universe, entries map[types.ID]*Entry, opts ...Option) *Registry {
	if u == nil {
		u = types.NewUniverse()
	}
	r := &Registry{types: u, entries: make(map[types.ID]*Entry, len(entries))}
	for _, opt := range opts {
		opt(r)
	}
	for id, e := range entries {
		if e == nil {
			continue
		}
		if !r.marked(e) {
			r.tracef("registry: skipping %s: not marked %s", id, r.requireMarker)
			continue
		}
		r.entries[id] = e
	}
	return r
}

// marked reports whether e may take part in generic construction.
// Entries that only carry generic mappings are never filtered.
func (r *Registry) marked(e *Entry) bool {
	if r.requireMarker == "" || !e.Custom {
		return true
	}
	return e.Type != nil && e.Type.HasMarker(r.requireMarker)
}

func (r *Registry) tracef(format string, args ...any) {
	if r.logger != nil && !r.quiet {
		r.logger.Printf(config.LogPrefix+format, args...)
	}
}

// Types returns the universe used to check constructor arguments.
func (r *Registry) Types() *types.Universe { return r.types }

// Entry returns the record registered for id.
func (r *Registry) Entry(id types.ID) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// IDs returns every registered type in sorted order.
func (r *Registry) IDs() []types.ID {
	ids := maps.Keys(r.entries)
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.entries) }

// GetClosedType returns the closed form of open instantiated with arg.
func (r *Registry) GetClosedType(open, arg types.ID) (types.ID, bool) {
	e, ok := r.entries[arg]
	if !ok || e.MakeGenerics == nil {
		return "", false
	}
	closed, ok := e.MakeGenerics[open]
	return closed, ok
}

// IsCustom reports whether id has a registered entry flagged Custom.
// Callers use it to choose a different construction strategy for types
// the generator did not special-case.
func (r *Registry) IsCustom(id types.ID) bool {
	e, ok := r.entries[id]
	return ok && e.Custom
}

// Kind returns the structural kind recorded for id.
func (r *Registry) Kind(id types.ID) (types.Shape, bool) {
	e, ok := r.entries[id]
	if !ok {
		return types.ShapeUnknown, false
	}
	return e.Shape, true
}

// Lazy wraps build so it runs at most once. Concurrent first callers
// all receive the same registry.
func Lazy(build func() *Registry) func() *Registry {
	return sync.OnceValue(build)
}

type registryKey struct{}

// WithRegistry returns a context carrying r.
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// FromContext returns the registry stored by WithRegistry.
func FromContext(ctx context.Context) (*Registry, bool) {
	r, ok := ctx.Value(registryKey{}).(*Registry)
	return r, ok && r != nil
}
