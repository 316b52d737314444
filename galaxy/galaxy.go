package galaxy

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy/ext"
	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/galaxy/store"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// Galaxy type codes.
const (
	TypeCentral   int32 = 0
	TypeSatellite int32 = 1
	TypeOrphan    int32 = 2
)

// Fields are the fixed per-galaxy values owned by the merger-tree and
// physics code. Baryonic properties live in the property store.
type Fields struct {
	SnapNum            int32
	Type               int32
	GalaxyNr           int32
	CentralGal         int32
	HaloNr             int32
	MostBoundID        int64
	GalaxyIndex        uint64
	CentralGalaxyIndex uint64

	MergeIntoID      int32
	MergeIntoSnapNum int32
	DT               float32

	Pos [3]float32
	Vel [3]float32
	Len int32

	Mvir        float32
	DeltaMvir   float32
	CentralMvir float32
	Rvir        float32
	Vvir        float32
	Vmax        float32

	InfallMvir float32
	InfallVvir float32
	InfallVmax float32

	MergTime float32
}

// Galaxy is one tracked record.
type Galaxy struct {
	Fields
	Ext   ext.Storage
	Props store.Handle
}

// ResetFields zeroes the fixed fields, leaving extensions and the store
// handle alone.
func (g *Galaxy) ResetFields() { g.Fields = Fields{} }

// Store resolves the galaxy's property store.
func (g *Galaxy) Store(env *Env) (*store.Store, error) {
	if g == nil {
		return nil, fmt.Errorf("galaxy: nil galaxy: %w", types.ErrInvalidArgument)
	}
	return env.Stores.Get(g.Props)
}

// Env carries the registry and store table a simulation uses. Every
// operation on galaxies takes it explicitly.
type Env struct {
	Registry *props.Registry
	Stores   *store.Table
}

// NewEnv builds an Env. A nil table gets a fresh one with the core schema.
func NewEnv(reg *props.Registry, stores *store.Table) (*Env, error) {
	if reg == nil || reg.Closed() {
		return nil, fmt.Errorf("galaxy: env needs a live registry: %w", types.ErrNotInitialized)
	}
	if stores == nil {
		stores = store.NewTable(nil)
	}
	return &Env{Registry: reg, Stores: stores}, nil
}

// Validate reports whether env is usable.
func (env *Env) Validate() error {
	if env == nil || env.Stores == nil {
		return fmt.Errorf("galaxy: nil env: %w", types.ErrInvalidArgument)
	}
	if env.Registry.Closed() {
		return fmt.Errorf("galaxy: registry closed: %w", types.ErrNotInitialized)
	}
	return nil
}

// New allocates a zeroed galaxy with initialized extension storage and a
// fresh property store.
func New(env *Env) (*Galaxy, error) {
	g := &Galaxy{}
	if err := Init(env, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Init resets g completely: zero fixed fields, extension storage sized to
// the current registry and a fresh zeroed property store. A live store
// previously held by g is released.
func Init(env *Env, g *Galaxy) error {
	if g == nil {
		return fmt.Errorf("galaxy: init nil galaxy: %w", types.ErrInvalidArgument)
	}
	if err := env.Validate(); err != nil {
		return err
	}
	h, err := env.Stores.New()
	if err != nil {
		return fmt.Errorf("galaxy: init: %w", err)
	}
	if err := g.Ext.Init(env.Registry); err != nil {
		_ = env.Stores.Release(h)
		return fmt.Errorf("galaxy: init: %w", err)
	}
	if env.Stores.Valid(g.Props) {
		_ = env.Stores.Release(g.Props)
	}
	g.ResetFields()
	g.Props = h
	return nil
}

// Recycle prepares a previously used galaxy for a new owner without
// resetting it. Extension storage is re-initialized against the current
// registry. Fixed fields and property store contents are left exactly as the
// previous owner wrote them; a store is allocated only if g has none.
//
// Callers must initialize every field they read.
func Recycle(env *Env, g *Galaxy) error {
	if g == nil {
		return fmt.Errorf("galaxy: recycle nil galaxy: %w", types.ErrInvalidArgument)
	}
	if err := env.Validate(); err != nil {
		return err
	}
	fresh := store.Nil
	if !env.Stores.Valid(g.Props) {
		h, err := env.Stores.New()
		if err != nil {
			return fmt.Errorf("galaxy: recycle: %w", err)
		}
		fresh = h
	}
	if err := g.Ext.Init(env.Registry); err != nil {
		if !fresh.IsNil() {
			_ = env.Stores.Release(fresh)
		}
		return fmt.Errorf("galaxy: recycle: %w", err)
	}
	if !fresh.IsNil() {
		g.Props = fresh
	}
	return nil
}

// Free releases g's extension storage and property store. The galaxy value
// itself is left for the garbage collector.
func Free(env *Env, g *Galaxy) error {
	if g == nil {
		return fmt.Errorf("galaxy: free nil galaxy: %w", types.ErrInvalidArgument)
	}
	g.Ext.Cleanup()
	if g.Props.IsNil() {
		return nil
	}
	if env == nil || env.Stores == nil {
		return fmt.Errorf("galaxy: free: nil env: %w", types.ErrInvalidArgument)
	}
	err := env.Stores.Release(g.Props)
	g.Props = store.Nil
	if err != nil {
		return fmt.Errorf("galaxy: free: %w", err)
	}
	return nil
}

// Copy makes dst a deep copy of src: fixed fields, a cloned property store
// and independently owned extension slots. dst's previous store is
// released. On error dst is unchanged.
func Copy(env *Env, dst, src *Galaxy) error {
	if dst == nil || src == nil {
		return fmt.Errorf("galaxy: copy: nil galaxy: %w", types.ErrInvalidArgument)
	}
	if dst == src {
		return nil
	}
	if err := env.Validate(); err != nil {
		return err
	}
	h, err := env.Stores.Clone(src.Props)
	if err != nil {
		logger.Error("galaxy: copy source has no live store", "handle", src.Props.String())
		return fmt.Errorf("galaxy: copy: %w", err)
	}
	var x ext.Storage
	if err := x.CopyFrom(env.Registry, &src.Ext); err != nil {
		_ = env.Stores.Release(h)
		return fmt.Errorf("galaxy: copy: %w", err)
	}
	if env.Stores.Valid(dst.Props) {
		_ = env.Stores.Release(dst.Props)
	}
	dst.Fields = src.Fields
	dst.Ext = x
	dst.Props = h
	return nil
}
