// Package pool provides a block allocator for galaxies under heavy
// create/destroy churn.
//
// # Overview
//
// A Pool owns fixed-size blocks of galaxy slots and a LIFO free list of
// unused slots drawn from any block. The invariant
//
//	Stats().Used + Stats().FreeLen == Stats().Capacity
//
// holds after every call, Capacity is always a multiple of the block size,
// and a slot is on the free list at most once. Ownership is tracked per slot,
// so releasing a foreign galaxy or releasing twice is logged and rejected
// without touching pool state.
//
// # Lifecycle
//
//	p, err := pool.New(env, pool.Config{InitialCapacity: 10, BlockSize: 5})
//	g, err := p.Alloc()
//	...
//	err = p.Release(g)
//	p.Destroy()
//
// States move Uninitialized -> Created -> Destroyed. A destroyed pool
// rejects Alloc and Release with ErrNotInitialized; create a new pool
// instead.
//
// # Recycled, not reset
//
// Alloc does NOT zero the galaxy it returns. Release cleans up extension
// storage only. The next Alloc re-initializes extension storage against the
// current registry, but fixed fields and property-store contents still hold
// the previous tenant's values. Every caller must overwrite the fields it
// reads, or call galaxy.Init to get a zeroed record at the cost of a fresh
// store allocation.
//
// Each slot keeps its property store across release and reuse. Destroy
// releases all of them.
//
// # Global pool
//
// InitGlobal, CleanupGlobal, Alloc and Free wrap one process-wide pool.
// When the global pool is disabled or was never initialized, Alloc and Free
// fall back to galaxy.New and galaxy.Free, so callers have one code path
// regardless of pooling mode.
//
// # Metrics
//
// Collector exports Stats (and registry id counts) as Prometheus metrics.
package pool
