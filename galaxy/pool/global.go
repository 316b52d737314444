package pool

import (
	"fmt"
	"sync"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// GlobalConfig configures the process-wide pool.
type GlobalConfig struct {
	Enabled bool
	Config
}

var (
	globalMu sync.Mutex
	global   *Pool
	inited   bool
)

// InitGlobal sets up the process-wide pool. With Enabled false it records
// that pooling is off and Alloc/Free fall back to direct allocation.
func InitGlobal(env *galaxy.Env, cfg GlobalConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if inited {
		return fmt.Errorf("pool: global: %w", types.ErrAlreadyInitialized)
	}
	if cfg.Enabled {
		p, err := New(env, cfg.Config)
		if err != nil {
			return fmt.Errorf("pool: global: %w", err)
		}
		global = p
	}
	inited = true
	logger.Info("pool: global initialized", "enabled", cfg.Enabled)
	return nil
}

// CleanupGlobal destroys the process-wide pool, if any. It is safe to call
// when InitGlobal never ran.
func CleanupGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		global.Destroy()
		global = nil
	}
	inited = false
}

// Global returns the process-wide pool or nil when pooling is off.
func Global() *Pool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

// Alloc returns a galaxy from the global pool, or a directly allocated one
// when pooling is off. Pooled galaxies follow the recycled-not-reset contract
// of Pool.Alloc; direct ones are zeroed. env is used only for direct
// allocation.
func Alloc(env *galaxy.Env) (*galaxy.Galaxy, error) {
	if p := Global(); p != nil {
		return p.Alloc()
	}
	return galaxy.New(env)
}

// Free hands g back to the global pool if it came from there and frees it
// directly otherwise.
func Free(env *galaxy.Env, g *galaxy.Galaxy) error {
	if p := Global(); p != nil && p.Owns(g) {
		return p.Release(g)
	}
	return galaxy.Free(env, g)
}
