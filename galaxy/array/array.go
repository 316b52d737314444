// Package array provides a growable, index-addressable sequence of galaxies.
//
// Each element owns its own property store and extension slots. Append
// deep-copies the argument, so the caller keeps ownership of what it passed
// in. Because galaxies reference their store through a store.Handle rather
// than a pointer, moving the backing slice during growth cannot lose or
// duplicate a store: the handle travels with the value.
package array

import (
	"errors"
	"fmt"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/store"
	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// Array is an ordered collection of galaxies. The zero value is not usable;
// call New.
type Array struct {
	env    *galaxy.Env
	items  []galaxy.Galaxy
	policy grow.Policy
	grows  int
}

// Option configures an Array.
type Option func(*Array)

// WithPolicy overrides the growth policy. Zero fields take the array
// defaults (floor 256, factor 1.5).
func WithPolicy(p grow.Policy) Option {
	return func(a *Array) {
		if p.Factor != 0 {
			a.policy.Factor = p.Factor
		}
		if p.Floor != 0 {
			a.policy.Floor = p.Floor
		}
		a.policy.Limit = p.Limit
	}
}

// DefaultPolicy is the growth policy of a new Array.
func DefaultPolicy() grow.Policy {
	return grow.Policy{Factor: types.DefaultGrowthFactor, Floor: types.ArrayGrowthFloor}
}

// New returns an empty array with no backing storage.
func New(env *galaxy.Env, opts ...Option) (*Array, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	a := &Array{env: env, policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(a)
	}
	if _, err := grow.NextCapacity(0, 1, a.policy); err != nil {
		return nil, fmt.Errorf("array: policy: %w", err)
	}
	return a, nil
}

// Len is the number of galaxies.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Cap is the current backing capacity.
func (a *Array) Cap() int {
	if a == nil {
		return 0
	}
	return cap(a.items)
}

// Grows is the number of reallocations performed so far.
func (a *Array) Grows() int { return a.grows }

// Append stores a deep copy of g at the end of the array and returns its
// index. The copy gets its own property store (a fresh one if g has none)
// and its own extension slots. On error the array is unchanged.
func (a *Array) Append(g *galaxy.Galaxy) (int, error) {
	if a == nil {
		return -1, fmt.Errorf("array: append to nil array: %w", types.ErrInvalidArgument)
	}
	if g == nil {
		logger.Error("array: append of nil galaxy")
		return -1, fmt.Errorf("array: append nil galaxy: %w", types.ErrInvalidArgument)
	}

	staged, err := a.stage(g)
	if err != nil {
		return -1, err
	}

	if len(a.items) == cap(a.items) {
		before := cap(a.items)
		grown, err := grow.Slice(a.items, len(a.items)+1, a.policy)
		if err != nil {
			a.discard(&staged)
			logger.Error("array: growth failed", "len", len(a.items), "cap", before, "err", err)
			return -1, fmt.Errorf("array: grow past %d: %w", before, err)
		}
		a.items = grown
		a.grows++
		logger.Debug("array: grew", "from", before, "to", cap(a.items))
	}

	a.items = append(a.items, staged)
	return len(a.items) - 1, nil
}

// stage builds the element Append will store.
func (a *Array) stage(g *galaxy.Galaxy) (galaxy.Galaxy, error) {
	var out galaxy.Galaxy
	out.Fields = g.Fields

	var (
		h   store.Handle
		err error
	)
	if g.Props.IsNil() {
		h, err = a.env.Stores.New()
	} else {
		h, err = a.env.Stores.Clone(g.Props)
	}
	if err != nil {
		logger.Error("array: cannot give appended galaxy a store", "handle", g.Props.String(), "err", err)
		return out, fmt.Errorf("array: append: %w", err)
	}
	out.Props = h

	if err := out.Ext.CopyFrom(a.env.Registry, &g.Ext); err != nil {
		a.discard(&out)
		return galaxy.Galaxy{}, fmt.Errorf("array: append: %w", err)
	}
	return out, nil
}

func (a *Array) discard(g *galaxy.Galaxy) {
	g.Ext.Cleanup()
	if !g.Props.IsNil() {
		_ = a.env.Stores.Release(g.Props)
		g.Props = store.Nil
	}
}

// Get returns the galaxy at index i, or nil when i is outside [0, Len).
// The pointer is valid until the next Append or Free.
func (a *Array) Get(i int) *galaxy.Galaxy {
	if a == nil || i < 0 || i >= len(a.items) {
		return nil
	}
	return &a.items[i]
}

// RawView returns the occupied backing storage for bulk iteration and
// in-place mutation. Elements may be modified but not retained; the view
// is invalid after the next Append or Free.
func (a *Array) RawView() []galaxy.Galaxy {
	if a == nil {
		return nil
	}
	return a.items[:len(a.items):len(a.items)]
}

// Free releases every galaxy's store and extensions and drops the backing
// storage. The array is empty and reusable afterwards. Release failures are
// joined and returned after every element has been visited.
func (a *Array) Free() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := range a.items {
		if err := galaxy.Free(a.env, &a.items[i]); err != nil {
			logger.Warn("array: element free failed", "index", i, "err", err)
			errs = append(errs, fmt.Errorf("index %d: %w", i, err))
		}
	}
	a.items = nil
	return errors.Join(errs...)
}
