package store

import (
	"fmt"
	"math"

	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// Handle names one store in a Table. The zero Handle is Nil and never
// resolves.
type Handle struct {
	index int32
	gen   uint32
}

// Nil is the handle of no store.
var Nil Handle

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsNil() {
		return "store.Nil"
	}
	return fmt.Sprintf("store#%d.%d", h.index, h.gen)
}

type entry struct {
	store *Store
	gen   uint32 // odd while live, even while free
}

// Table owns every Store of one simulation and hands out generation-checked
// handles to them.
type Table struct {
	schema  *Schema
	entries []entry
	free    []int32
	live    int
	policy  grow.Policy
}

// NewTable creates an empty table whose stores use schema. A nil schema
// selects Core.
func NewTable(schema *Schema) *Table {
	if schema == nil {
		schema = Core()
	}
	return &Table{schema: schema, policy: grow.Default()}
}

// Schema returns the layout shared by every store in t.
func (t *Table) Schema() *Schema { return t.schema }

// Live is the number of stores currently allocated.
func (t *Table) Live() int { return t.live }

// Cap is the number of entries, live or free.
func (t *Table) Cap() int { return len(t.entries) }

// New allocates a zeroed store and returns its handle.
func (t *Table) New() (Handle, error) {
	st, err := newStore(t.schema)
	if err != nil {
		logger.Error("store: allocation failed", "err", err)
		return Nil, err
	}
	return t.insert(st)
}

func (t *Table) insert(st *Store) (Handle, error) {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		e := &t.entries[idx]
		e.gen++
		e.store = st
		t.live++
		return Handle{index: idx, gen: e.gen}, nil
	}
	if len(t.entries) >= math.MaxInt32 {
		return Nil, fmt.Errorf("store: table full: %w", types.ErrResourceExhausted)
	}
	grown, err := grow.Slice(t.entries, len(t.entries)+1, t.policy)
	if err != nil {
		logger.Error("store: table growth failed", "entries", len(t.entries), "err", err)
		return Nil, fmt.Errorf("store: grow table: %w", err)
	}
	t.entries = append(grown, entry{store: st, gen: 1})
	t.live++
	return Handle{index: int32(len(t.entries) - 1), gen: 1}, nil
}

// Valid reports whether h resolves to a live store.
func (t *Table) Valid(h Handle) bool {
	_, ok := t.resolve(h)
	return ok
}

func (t *Table) resolve(h Handle) (*Store, bool) {
	if t == nil || h.IsNil() || h.index < 0 || int(h.index) >= len(t.entries) {
		return nil, false
	}
	e := &t.entries[h.index]
	if e.gen != h.gen || e.store == nil {
		return nil, false
	}
	return e.store, true
}

// Get resolves h. Stale or nil handles fail with InvalidArgument.
func (t *Table) Get(h Handle) (*Store, error) {
	st, ok := t.resolve(h)
	if !ok {
		return nil, fmt.Errorf("store: %s: stale or nil handle: %w", h, types.ErrInvalidArgument)
	}
	return st, nil
}

// Clone allocates a new store holding a copy of h's contents. The result
// never aliases h.
func (t *Table) Clone(h Handle) (Handle, error) {
	src, err := t.Get(h)
	if err != nil {
		logger.Error("store: clone of unresolvable handle", "handle", h.String())
		return Nil, err
	}
	dst, err := newStore(t.schema)
	if err != nil {
		logger.Error("store: clone allocation failed", "err", err)
		return Nil, err
	}
	copy(dst.data, src.data)
	return t.insert(dst)
}

// Release frees the store named by h. Releasing a stale or nil handle is
// reported and leaves the table unchanged.
func (t *Table) Release(h Handle) error {
	if _, ok := t.resolve(h); !ok {
		logger.Warn("store: release of stale or nil handle", "handle", h.String())
		return fmt.Errorf("store: release %s: %w", h, types.ErrInvalidArgument)
	}
	if len(t.free) == cap(t.free) {
		grown, err := grow.Slice(t.free, len(t.free)+1, t.policy)
		if err != nil {
			logger.Error("store: free list growth failed", "err", err)
			return fmt.Errorf("store: release %s: %w", h, err)
		}
		t.free = grown
	}
	e := &t.entries[h.index]
	e.store = nil
	e.gen++
	t.free = append(t.free, h.index)
	t.live--
	return nil
}
