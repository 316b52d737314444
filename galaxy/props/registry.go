package props

import (
	"fmt"
	"slices"

	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// moduleGroup lists the live extension ids owned by one module, in
// registration order. Ids need not be contiguous: modules may interleave
// their registrations freely.
type moduleGroup struct {
	module types.ModuleID
	ids    []types.ExtensionID
}

// Registry is the catalog of extension properties for one simulation.
//
// Ids are issued densely in registration order and never reused: an
// unregistered id stays reserved (its descriptor cleared in place) so that
// ids cached by other modules can never alias a later property.
//
// A Registry is not safe for concurrent mutation.
type Registry struct {
	limits  types.Limits
	descs   []Descriptor // indexed by ExtensionID; cleared entries have Name == ""
	byName  map[string]types.ExtensionID
	modules []moduleGroup
	live    int
	closed  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLimits overrides the default capacities. Non-positive fields keep
// their defaults.
func WithLimits(l types.Limits) Option {
	return func(r *Registry) { r.limits = l.Normalize() }
}

// New returns an empty, initialized registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		limits: types.DefaultLimits(),
		byName: make(map[string]types.ExtensionID),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.descs = make([]Descriptor, 0, r.limits.MaxProperties)
	return r
}

// Limits returns the registry's capacities.
func (r *Registry) Limits() types.Limits { return r.limits }

// Register validates d, assigns the next extension id, and records it under
// its module. The returned id is stable for the life of the registry.
func (r *Registry) Register(d Descriptor) (types.ExtensionID, error) {
	if r == nil || r.closed {
		return types.InvalidExtension, fmt.Errorf("props: register: %w", types.ErrNotInitialized)
	}
	if err := d.validate(); err != nil {
		logger.Warn("props: rejected descriptor", "name", d.Name, "err", err)
		return types.InvalidExtension, err
	}
	if existing, ok := r.byName[d.Name]; ok {
		err := fmt.Errorf("props: %q already registered as id %d: %w", d.Name, existing, types.ErrDuplicateName)
		logger.Warn("props: duplicate name", "name", d.Name, "id", existing)
		return types.InvalidExtension, err
	}
	if len(r.descs) >= r.limits.MaxProperties {
		err := fmt.Errorf("props: %q: registry full (%d ids issued): %w",
			d.Name, r.limits.MaxProperties, types.ErrResourceExhausted)
		logger.Error("props: registry capacity exhausted", "name", d.Name, "max", r.limits.MaxProperties)
		return types.InvalidExtension, err
	}
	gi := r.groupIndex(d.Module)
	if gi < 0 && len(r.modules) >= r.limits.MaxModules {
		err := fmt.Errorf("props: %q: module %d would exceed %d modules: %w",
			d.Name, d.Module, r.limits.MaxModules, types.ErrResourceExhausted)
		logger.Error("props: module capacity exhausted", "name", d.Name, "module", d.Module)
		return types.InvalidExtension, err
	}

	id := types.ExtensionID(len(r.descs))
	d.ID = id
	r.descs = append(r.descs, d)
	r.byName[d.Name] = id
	if gi < 0 {
		r.modules = append(r.modules, moduleGroup{module: d.Module})
		gi = len(r.modules) - 1
	}
	r.modules[gi].ids = append(r.modules[gi].ids, id)
	r.live++

	logger.Debug("props: registered", "name", d.Name, "id", id, "module", d.Module, "type", d.Type)
	return id, nil
}

// Unregister clears the descriptor for id in place and removes it from its
// module group. The id is not recycled and Len is unchanged.
func (r *Registry) Unregister(id types.ExtensionID) error {
	if r == nil || r.closed {
		return fmt.Errorf("props: unregister: %w", types.ErrNotInitialized)
	}
	d := r.lookup(id)
	if d == nil {
		logger.Warn("props: unregister of unknown id", "id", id)
		return fmt.Errorf("props: unregister id %d: %w", id, types.ErrNotFound)
	}

	if gi := r.groupIndex(d.Module); gi >= 0 {
		g := &r.modules[gi]
		if i := slices.Index(g.ids, id); i >= 0 {
			g.ids = slices.Delete(g.ids, i, i+1)
		}
		if len(g.ids) == 0 {
			r.modules = slices.Delete(r.modules, gi, gi+1)
		}
	}
	delete(r.byName, d.Name)
	r.descs[id] = Descriptor{ID: id}
	r.live--
	return nil
}

// FindByID returns a copy of the descriptor for id.
func (r *Registry) FindByID(id types.ExtensionID) (Descriptor, bool) {
	d := r.lookup(id)
	if d == nil {
		return Descriptor{}, false
	}
	return *d, true
}

// FindByName returns a copy of the descriptor registered under name.
func (r *Registry) FindByName(name string) (Descriptor, bool) {
	if r == nil || r.closed {
		return Descriptor{}, false
	}
	id, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[id], true
}

// FindAllByModule returns copies of the module's live descriptors in
// registration order, or nil when the module owns none.
func (r *Registry) FindAllByModule(module types.ModuleID) []Descriptor {
	if r == nil || r.closed {
		return nil
	}
	gi := r.groupIndex(module)
	if gi < 0 {
		return nil
	}
	ids := r.modules[gi].ids
	out := make([]Descriptor, len(ids))
	for i, id := range ids {
		out[i] = r.descs[id]
	}
	return out
}

// ModuleExtension resolves the offset-th live property of module.
func (r *Registry) ModuleExtension(module types.ModuleID, offset int) (types.ExtensionID, error) {
	if r == nil || r.closed {
		return types.InvalidExtension, fmt.Errorf("props: module lookup: %w", types.ErrNotInitialized)
	}
	gi := r.groupIndex(module)
	if gi < 0 {
		return types.InvalidExtension, fmt.Errorf("props: module %d: %w", module, types.ErrNotFound)
	}
	ids := r.modules[gi].ids
	if offset < 0 || offset >= len(ids) {
		return types.InvalidExtension, fmt.Errorf("props: module %d offset %d of %d: %w",
			module, offset, len(ids), types.ErrOutOfBounds)
	}
	return ids[offset], nil
}

// Modules returns the ids of modules with live registrations, in order of
// their first registration.
func (r *Registry) Modules() []types.ModuleID {
	if r == nil || r.closed {
		return nil
	}
	out := make([]types.ModuleID, len(r.modules))
	for i, g := range r.modules {
		out[i] = g.module
	}
	return out
}

// Len is the number of ids issued so far, including unregistered ones.
// Extension storage sizes its slot table by Len.
func (r *Registry) Len() int {
	if r == nil || r.closed {
		return 0
	}
	return len(r.descs)
}

// Live is the number of currently registered properties.
func (r *Registry) Live() int {
	if r == nil || r.closed {
		return 0
	}
	return r.live
}

// Close tears the registry down. Every previously issued id becomes
// unresolvable and further registration fails with ErrNotInitialized.
func (r *Registry) Close() {
	if r == nil || r.closed {
		return
	}
	r.closed = true
	r.descs = nil
	r.byName = nil
	r.modules = nil
	r.live = 0
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool { return r == nil || r.closed }

// lookup returns the live descriptor for id or nil. The pointer is only
// valid until the next Register call.
func (r *Registry) lookup(id types.ExtensionID) *Descriptor {
	if r == nil || r.closed || id < 0 || int(id) >= len(r.descs) {
		return nil
	}
	d := &r.descs[id]
	if d.Name == "" {
		return nil
	}
	return d
}

// Lookup is the allocation-free form of FindByID used on the per-record hot
// path. The returned descriptor must be treated as read-only and not
// retained across registry mutations.
func (r *Registry) Lookup(id types.ExtensionID) (*Descriptor, bool) {
	d := r.lookup(id)
	return d, d != nil
}

func (r *Registry) groupIndex(module types.ModuleID) int {
	for i := range r.modules {
		if r.modules[i].module == module {
			return i
		}
	}
	return -1
}
