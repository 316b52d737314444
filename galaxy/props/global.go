package props

import (
	"fmt"
	"sync"

	"github.com/joshuapare/galkit/pkg/types"
)

// Process-wide registry for callers that cannot thread a *Registry through.
// New code should prefer explicit instances carried by galaxy.Env.
var (
	globalMu sync.Mutex
	global   *Registry
)

// Initialize creates the process-wide registry. It fails with
// ErrAlreadyInitialized when called twice without an intervening Teardown.
func Initialize(opts ...Option) (*Registry, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return nil, fmt.Errorf("props: initialize: %w", types.ErrAlreadyInitialized)
	}
	global = New(opts...)
	return global, nil
}

// Default returns the process-wide registry.
func Default() (*Registry, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return nil, fmt.Errorf("props: default registry: %w", types.ErrNotInitialized)
	}
	return global, nil
}

// Teardown closes and forgets the process-wide registry. It is a no-op when
// no registry exists.
func Teardown() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		global.Close()
		global = nil
	}
}
