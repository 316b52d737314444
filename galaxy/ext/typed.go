package ext

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

// typed resolves id, checks its type tag and write permission, and returns
// the slot. Checks run before the slot is allocated.
func (s *Storage) typed(reg *props.Registry, id types.ExtensionID, want props.TypeTag, write bool) ([]byte, error) {
	d, ok := reg.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("ext: id %d: %w", id, types.ErrNotFound)
	}
	if d.Type != want {
		return nil, fmt.Errorf("ext: %q is %s, accessed as %s: %w", d.Name, d.Type, want, types.ErrTypeMismatch)
	}
	if write && d.Flags.Has(props.FlagReadOnly) {
		return nil, fmt.Errorf("ext: %q: %w", d.Name, types.ErrReadOnly)
	}
	return s.Get(reg, id)
}

// Float32 reads a float32 extension.
func (s *Storage) Float32(reg *props.Registry, id types.ExtensionID) (float32, error) {
	b, err := s.typed(reg, id, props.TypeFloat32, false)
	if err != nil {
		return 0, err
	}
	return buf.F32LE(b), nil
}

// SetFloat32 writes a float32 extension.
func (s *Storage) SetFloat32(reg *props.Registry, id types.ExtensionID, v float32) error {
	b, err := s.typed(reg, id, props.TypeFloat32, true)
	if err != nil {
		return err
	}
	buf.PutF32LE(b, v)
	return nil
}

// Float64 reads a float64 extension.
func (s *Storage) Float64(reg *props.Registry, id types.ExtensionID) (float64, error) {
	b, err := s.typed(reg, id, props.TypeFloat64, false)
	if err != nil {
		return 0, err
	}
	return buf.F64LE(b), nil
}

// SetFloat64 writes a float64 extension.
func (s *Storage) SetFloat64(reg *props.Registry, id types.ExtensionID, v float64) error {
	b, err := s.typed(reg, id, props.TypeFloat64, true)
	if err != nil {
		return err
	}
	buf.PutF64LE(b, v)
	return nil
}

// Int32 reads an int32 extension.
func (s *Storage) Int32(reg *props.Registry, id types.ExtensionID) (int32, error) {
	b, err := s.typed(reg, id, props.TypeInt32, false)
	if err != nil {
		return 0, err
	}
	return int32(buf.U32LE(b)), nil
}

// SetInt32 writes an int32 extension.
func (s *Storage) SetInt32(reg *props.Registry, id types.ExtensionID, v int32) error {
	b, err := s.typed(reg, id, props.TypeInt32, true)
	if err != nil {
		return err
	}
	buf.PutU32LE(b, uint32(v))
	return nil
}

// Int64 reads an int64 extension.
func (s *Storage) Int64(reg *props.Registry, id types.ExtensionID) (int64, error) {
	b, err := s.typed(reg, id, props.TypeInt64, false)
	if err != nil {
		return 0, err
	}
	return int64(buf.U64LE(b)), nil
}

// SetInt64 writes an int64 extension.
func (s *Storage) SetInt64(reg *props.Registry, id types.ExtensionID, v int64) error {
	b, err := s.typed(reg, id, props.TypeInt64, true)
	if err != nil {
		return err
	}
	buf.PutU64LE(b, uint64(v))
	return nil
}

// Uint64 reads a uint64 extension.
func (s *Storage) Uint64(reg *props.Registry, id types.ExtensionID) (uint64, error) {
	b, err := s.typed(reg, id, props.TypeUint64, false)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(b), nil
}

// SetUint64 writes a uint64 extension.
func (s *Storage) SetUint64(reg *props.Registry, id types.ExtensionID, v uint64) error {
	b, err := s.typed(reg, id, props.TypeUint64, true)
	if err != nil {
		return err
	}
	buf.PutU64LE(b, v)
	return nil
}

// Bool reads a bool extension.
func (s *Storage) Bool(reg *props.Registry, id types.ExtensionID) (bool, error) {
	b, err := s.typed(reg, id, props.TypeBool, false)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// SetBool writes a bool extension.
func (s *Storage) SetBool(reg *props.Registry, id types.ExtensionID, v bool) error {
	b, err := s.typed(reg, id, props.TypeBool, true)
	if err != nil {
		return err
	}
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
	return nil
}
