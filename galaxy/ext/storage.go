// Package ext provides the per-galaxy storage for registered extension
// properties.
//
// A Storage holds one slot per extension id the registry had issued when the
// storage was (re-)initialized. Slots are allocated lazily on first access,
// sized by the property descriptor, and tracked in a populated bitmap so that
// copies and cleanups only touch slots that were actually written.
//
// Storage is a plain value embedded in galaxy.Galaxy. Copying the struct
// shares slot buffers; use CopyFrom for an independent copy.
package ext

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// Storage is the extension block of one galaxy.
type Storage struct {
	slots     [][]byte
	populated bitmap
}

// Init sizes the storage for every id reg has issued, releasing any previous
// extension data first. A registry with no properties leaves the storage
// empty.
func (s *Storage) Init(reg *props.Registry) error {
	s.Cleanup()
	n := reg.Len()
	if n == 0 {
		return nil
	}
	slots, err := grow.Make[[]byte](n, n)
	if err != nil {
		logger.Error("ext: slot table allocation failed", "slots", n, "err", err)
		return fmt.Errorf("ext: init %d slots: %w", n, err)
	}
	s.slots = slots
	s.populated = newBitmap(n)
	return nil
}

// Len is the number of slots (populated or not).
func (s *Storage) Len() int { return len(s.slots) }

// PopulatedCount is the number of slots written since initialization.
func (s *Storage) PopulatedCount() int { return s.populated.count() }

// Populated reports whether the slot for id has been allocated.
func (s *Storage) Populated(id types.ExtensionID) bool { return s.populated.has(int(id)) }

// Empty reports whether the storage holds no slots at all.
func (s *Storage) Empty() bool { return len(s.slots) == 0 && len(s.populated) == 0 }

// Peek returns the slot for id without allocating it.
func (s *Storage) Peek(id types.ExtensionID) ([]byte, bool) {
	if !s.populated.has(int(id)) {
		return nil, false
	}
	return s.slots[id], true
}

// Get returns the slot for id, allocating it on first access.
func (s *Storage) Get(reg *props.Registry, id types.ExtensionID) ([]byte, error) {
	if id < 0 || int(id) >= len(s.slots) {
		logger.Error("ext: extension id out of range", "id", id, "slots", len(s.slots))
		return nil, fmt.Errorf("ext: id %d outside %d slots: %w", id, len(s.slots), types.ErrOutOfBounds)
	}
	if s.populated.has(int(id)) {
		return s.slots[id], nil
	}
	d, ok := reg.Lookup(id)
	if !ok {
		logger.Error("ext: extension id not registered", "id", id)
		return nil, fmt.Errorf("ext: id %d: %w", id, types.ErrNotFound)
	}
	return s.allocate(d)
}

// GetByModule resolves the offset-th property of module and returns its slot.
func (s *Storage) GetByModule(reg *props.Registry, module types.ModuleID, offset int) ([]byte, error) {
	id, err := reg.ModuleExtension(module, offset)
	if err != nil {
		logger.Error("ext: module lookup failed", "module", module, "offset", offset, "err", err)
		return nil, err
	}
	return s.Get(reg, id)
}

// GetByName resolves name through the registry and returns its slot.
func (s *Storage) GetByName(reg *props.Registry, name string) ([]byte, error) {
	d, ok := reg.FindByName(name)
	if !ok {
		logger.Error("ext: unknown property name", "name", name)
		return nil, fmt.Errorf("ext: property %q: %w", name, types.ErrNotFound)
	}
	return s.Get(reg, d.ID)
}

// Cleanup releases every slot and resets the storage to empty. Calling it on
// an empty storage is a no-op.
func (s *Storage) Cleanup() {
	s.slots = nil
	s.populated = nil
}

// CopyFrom replaces s with an independent copy of src. Only populated slots
// are copied, each using its descriptor's declared size. Slots whose id no
// longer resolves are skipped with a warning.
func (s *Storage) CopyFrom(reg *props.Registry, src *Storage) error {
	if s == src {
		return nil
	}
	s.Cleanup()
	if src == nil || len(src.slots) == 0 {
		return nil
	}

	n := len(src.slots)
	slots, err := grow.Make[[]byte](n, n)
	if err != nil {
		return fmt.Errorf("ext: copy %d slots: %w", n, err)
	}
	dst := Storage{slots: slots, populated: newBitmap(n)}

	var copyErr error
	src.populated.each(func(i int) {
		if copyErr != nil {
			return
		}
		d, ok := reg.Lookup(types.ExtensionID(i))
		if !ok {
			logger.Warn("ext: skipping slot of unregistered property", "id", i)
			return
		}
		b, err := dst.allocate(d)
		if err != nil {
			copyErr = err
			return
		}
		copy(b, src.slots[i])
	})
	if copyErr != nil {
		return fmt.Errorf("ext: copy: %w", copyErr)
	}
	*s = dst
	return nil
}

func (s *Storage) allocate(d *props.Descriptor) ([]byte, error) {
	b, err := grow.Make[byte](d.Size, d.Size)
	if err != nil {
		logger.Error("ext: slot allocation failed", "name", d.Name, "size", d.Size, "err", err)
		return nil, fmt.Errorf("ext: allocate %q: %w", d.Name, err)
	}
	if d.Flags.Has(props.FlagZeroInit) {
		clear(b)
	}
	s.slots[d.ID] = b
	s.populated.set(int(d.ID))
	return b, nil
}
