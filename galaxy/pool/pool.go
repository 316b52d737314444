package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/store"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// State is the lifecycle state of a Pool.
type State int32

const (
	StateUninitialized State = iota
	StateCreated
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreated:
		return "created"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config sizes a Pool.
type Config struct {
	// InitialCapacity is rounded up to a multiple of BlockSize and allocated
	// up front. Zero allocates nothing until the first Alloc.
	InitialCapacity int

	// BlockSize is the number of slots per block. Zero selects
	// types.DefaultPoolBlockSize.
	BlockSize int

	// MaxCapacity bounds the total number of slots. Zero means unbounded.
	MaxCapacity int
}

// DefaultConfig returns the standard pool sizing.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: types.DefaultPoolCapacity,
		BlockSize:       types.DefaultPoolBlockSize,
	}
}

// Stats is a point-in-time view of pool usage.
type Stats struct {
	Capacity    int
	Used        int
	FreeLen     int
	Blocks      int
	Peak        int
	TotalAllocs uint64
	Releases    uint64
	Reuses      uint64
}

// slot bookkeeping flags.
const (
	slotInUse uint8 = 1 << iota
	slotTouched
)

// Pool hands out galaxies from fixed-size blocks.
type Pool struct {
	env    *galaxy.Env
	cfg    Config
	policy grow.Policy
	state  State

	blocks [][]galaxy.Galaxy
	free   []*galaxy.Galaxy
	slots  map[*galaxy.Galaxy]uint8

	// Counters are atomic so a metrics scrape may read them while the
	// owning goroutine keeps working.
	capacity atomic.Int64
	used     atomic.Int64
	freeLen  atomic.Int64
	nblocks  atomic.Int64
	peak     atomic.Int64
	allocs   atomic.Uint64
	releases atomic.Uint64
	reuses   atomic.Uint64
}

// New creates a pool, allocating InitialCapacity slots rounded up to whole
// blocks and seeding the free list with every slot. On failure nothing is
// retained.
func New(env *galaxy.Env, cfg Config) (*Pool, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = types.DefaultPoolBlockSize
	}
	if cfg.BlockSize < 0 || cfg.InitialCapacity < 0 || cfg.MaxCapacity < 0 {
		return nil, fmt.Errorf("pool: negative sizing %+v: %w", cfg, types.ErrInvalidArgument)
	}
	initial, ok := buf.RoundUp(cfg.InitialCapacity, cfg.BlockSize)
	if !ok {
		return nil, fmt.Errorf("pool: capacity %d overflows: %w", cfg.InitialCapacity, types.ErrOutOfMemory)
	}
	if cfg.MaxCapacity > 0 && initial > cfg.MaxCapacity {
		return nil, fmt.Errorf("pool: initial capacity %d exceeds max %d: %w", initial, cfg.MaxCapacity, types.ErrOutOfMemory)
	}

	p := &Pool{
		env:    env,
		cfg:    cfg,
		policy: grow.Default(),
		slots:  make(map[*galaxy.Galaxy]uint8, initial),
	}
	nblocks := initial / cfg.BlockSize
	if nblocks > 0 {
		blocks, err := grow.Make[[]galaxy.Galaxy](0, nblocks)
		if err != nil {
			return nil, fmt.Errorf("pool: block directory: %w", err)
		}
		free, err := grow.Make[*galaxy.Galaxy](0, initial)
		if err != nil {
			return nil, fmt.Errorf("pool: free list: %w", err)
		}
		p.blocks, p.free = blocks, free
	}
	for range nblocks {
		if err := p.addBlock(); err != nil {
			// Dropping p releases every block allocated so far.
			logger.Error("pool: create failed", "blocks", len(p.blocks), "want", nblocks, "err", err)
			return nil, fmt.Errorf("pool: create: %w", err)
		}
	}
	p.state = StateCreated
	p.publish()
	logger.Debug("pool: created", "capacity", initial, "block_size", cfg.BlockSize)
	return p, nil
}

// State reports the lifecycle state.
func (p *Pool) State() State {
	if p == nil {
		return StateUninitialized
	}
	return p.state
}

// Env returns the environment the pool's galaxies belong to.
func (p *Pool) Env() *galaxy.Env { return p.env }

// BlockSize is the configured slots per block.
func (p *Pool) BlockSize() int { return p.cfg.BlockSize }

// addBlock allocates one block and pushes all its slots onto the free list
// so that the lowest slot is popped first.
func (p *Pool) addBlock() error {
	bs := p.cfg.BlockSize
	capacity := len(p.blocks) * bs
	if p.cfg.MaxCapacity > 0 && capacity+bs > p.cfg.MaxCapacity {
		return fmt.Errorf("pool: block would exceed max capacity %d: %w", p.cfg.MaxCapacity, types.ErrOutOfMemory)
	}
	block, err := grow.Make[galaxy.Galaxy](bs, bs)
	if err != nil {
		return fmt.Errorf("pool: block of %d: %w", bs, err)
	}
	blocks, err := grow.Slice(p.blocks, len(p.blocks)+1, p.policy)
	if err != nil {
		return fmt.Errorf("pool: block directory: %w", err)
	}
	free, err := grow.Slice(p.free, len(p.free)+bs, p.policy)
	if err != nil {
		return fmt.Errorf("pool: free list: %w", err)
	}
	p.blocks = append(blocks, block)
	for i := bs - 1; i >= 0; i-- {
		g := &block[i]
		free = append(free, g)
		p.slots[g] = 0
	}
	p.free = free
	return nil
}

// Alloc returns a galaxy from the free list, adding a block when the list
// is empty.
//
// RECYCLED, NOT RESET: the returned galaxy has freshly initialized
// extension storage, but its fixed fields and property store contents are
// whatever the previous tenant left behind. Callers must write every field
// they later read, or call galaxy.Init for a fully zeroed record.
func (p *Pool) Alloc() (*galaxy.Galaxy, error) {
	if p.State() != StateCreated {
		logger.Error("pool: alloc outside created state", "state", p.State().String())
		return nil, fmt.Errorf("pool: alloc in state %s: %w", p.State(), types.ErrNotInitialized)
	}
	if len(p.free) == 0 {
		if err := p.addBlock(); err != nil {
			logger.Error("pool: grow failed", "capacity", len(p.blocks)*p.cfg.BlockSize, "err", err)
			return nil, err
		}
		logger.Debug("pool: added block", "blocks", len(p.blocks))
	}

	n := len(p.free)
	g := p.free[n-1]
	if err := galaxy.Recycle(p.env, g); err != nil {
		logger.Error("pool: recycle failed", "err", err)
		p.publish()
		return nil, fmt.Errorf("pool: alloc: %w", err)
	}
	p.free[n-1] = nil
	p.free = p.free[:n-1]

	flags := p.slots[g]
	if flags&slotTouched != 0 {
		p.reuses.Add(1)
	}
	p.slots[g] = slotInUse | slotTouched
	p.allocs.Add(1)
	used := p.used.Add(1)
	if used > p.peak.Load() {
		p.peak.Store(used)
	}
	p.publish()
	return g, nil
}

// Release returns g to the free list after cleaning up its extension
// storage. Fixed fields and the property store are left as they are.
// Releasing a galaxy the pool did not issue, or one already released, is
// logged and rejected with the pool unchanged.
func (p *Pool) Release(g *galaxy.Galaxy) error {
	if p.State() != StateCreated {
		logger.Warn("pool: release outside created state", "state", p.State().String())
		return fmt.Errorf("pool: release in state %s: %w", p.State(), types.ErrNotInitialized)
	}
	if g == nil {
		logger.Warn("pool: release of nil galaxy")
		return fmt.Errorf("pool: release nil: %w", types.ErrInvalidArgument)
	}
	flags, ok := p.slots[g]
	if !ok {
		logger.Warn("pool: release of foreign galaxy", "addr", fmt.Sprintf("%p", g))
		return fmt.Errorf("pool: galaxy not issued by this pool: %w", types.ErrInvalidArgument)
	}
	if flags&slotInUse == 0 {
		logger.Warn("pool: double release", "addr", fmt.Sprintf("%p", g))
		return fmt.Errorf("pool: galaxy already released: %w", types.ErrInvalidArgument)
	}
	if len(p.free) == cap(p.free) {
		free, err := grow.Slice(p.free, len(p.free)+1, p.policy)
		if err != nil {
			logger.Error("pool: free list growth failed", "err", err)
			return fmt.Errorf("pool: release: %w", err)
		}
		p.free = free
	}

	g.Ext.Cleanup()
	p.free = append(p.free, g)
	p.slots[g] = flags &^ slotInUse
	p.used.Add(-1)
	p.releases.Add(1)
	p.publish()
	return nil
}

// Owns reports whether g is a slot of this pool.
func (p *Pool) Owns(g *galaxy.Galaxy) bool {
	if p == nil || g == nil {
		return false
	}
	_, ok := p.slots[g]
	return ok
}

// InUse reports whether g is currently allocated from this pool.
func (p *Pool) InUse(g *galaxy.Galaxy) bool {
	if p == nil || g == nil {
		return false
	}
	return p.slots[g]&slotInUse != 0
}

// Destroy cleans up every slot, occupied or not, releases their property
// stores and drops all blocks. The pool cannot be used afterwards. Calling
// Destroy again is a no-op.
func (p *Pool) Destroy() {
	if p == nil || p.state == StateDestroyed {
		return
	}
	released := 0
	for _, block := range p.blocks {
		for i := range block {
			g := &block[i]
			g.Ext.Cleanup()
			if p.env.Stores.Valid(g.Props) {
				_ = p.env.Stores.Release(g.Props)
				released++
			}
			g.Props = store.Nil
		}
	}
	logger.Debug("pool: destroyed", "blocks", len(p.blocks), "stores_released", released, "used", p.used.Load())
	p.blocks = nil
	p.free = nil
	p.slots = nil
	p.state = StateDestroyed
	p.used.Store(0)
	p.publish()
}

// Stats returns current usage.
func (p *Pool) Stats() Stats {
	if p == nil {
		return Stats{}
	}
	return Stats{
		Capacity:    int(p.capacity.Load()),
		Used:        int(p.used.Load()),
		FreeLen:     int(p.freeLen.Load()),
		Blocks:      int(p.nblocks.Load()),
		Peak:        int(p.peak.Load()),
		TotalAllocs: p.allocs.Load(),
		Releases:    p.releases.Load(),
		Reuses:      p.reuses.Load(),
	}
}

// publish refreshes the derived counters after a structural change.
func (p *Pool) publish() {
	p.nblocks.Store(int64(len(p.blocks)))
	p.capacity.Store(int64(len(p.blocks) * p.cfg.BlockSize))
	p.freeLen.Store(int64(len(p.free)))
}
