package store

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/pkg/types"
)

// Store is one galaxy's core property block. All values are little-endian
// in a single backing allocation sized by the schema.
type Store struct {
	schema *Schema
	data   []byte
}

func newStore(s *Schema) (*Store, error) {
	data, err := grow.Make[byte](s.Size(), s.Size())
	if err != nil {
		return nil, fmt.Errorf("store: allocate %d bytes: %w", s.Size(), err)
	}
	return &Store{schema: s, data: data}, nil
}

// Schema returns the layout of s.
func (s *Store) Schema() *Schema { return s.schema }

// Bytes exposes the raw backing block. It aliases the store.
func (s *Store) Bytes() []byte { return s.data }

// Reset zeroes every field.
func (s *Store) Reset() { clear(s.data) }

// CopyFrom overwrites s with the contents of src. Both stores must share a
// schema.
func (s *Store) CopyFrom(src *Store) error {
	if src == nil {
		return fmt.Errorf("store: copy from nil: %w", types.ErrInvalidArgument)
	}
	if src.schema != s.schema {
		return fmt.Errorf("store: copy across schemas: %w", types.ErrTypeMismatch)
	}
	copy(s.data, src.data)
	return nil
}

// Field returns the raw bytes of field f.
func (s *Store) Field(f FieldID) ([]byte, error) {
	fd, ok := s.schema.Field(f)
	if !ok {
		return nil, fmt.Errorf("store: field %d: %w", f, types.ErrOutOfBounds)
	}
	return s.data[fd.Offset : fd.Offset+fd.Size], nil
}

// elem returns the bytes of element i of field f after checking its type.
func (s *Store) elem(f FieldID, i int, want props.TypeTag) ([]byte, error) {
	fd, ok := s.schema.Field(f)
	if !ok {
		return nil, fmt.Errorf("store: field %d: %w", f, types.ErrOutOfBounds)
	}
	if fd.Type != want {
		return nil, fmt.Errorf("store: %s is %s, accessed as %s: %w", fd.Name, fd.Type, want, types.ErrTypeMismatch)
	}
	if i < 0 || i >= fd.Count {
		return nil, fmt.Errorf("store: %s[%d] of %d: %w", fd.Name, i, fd.Count, types.ErrOutOfBounds)
	}
	w := want.Width()
	off := fd.Offset + i*w
	return s.data[off : off+w], nil
}

// Float32 reads scalar field f.
func (s *Store) Float32(f FieldID) (float32, error) { return s.Float32At(f, 0) }

// SetFloat32 writes scalar field f.
func (s *Store) SetFloat32(f FieldID, v float32) error { return s.SetFloat32At(f, 0, v) }

// Float32At reads element i of a float32 field.
func (s *Store) Float32At(f FieldID, i int) (float32, error) {
	b, err := s.elem(f, i, props.TypeFloat32)
	if err != nil {
		return 0, err
	}
	return buf.F32LE(b), nil
}

// SetFloat32At writes element i of a float32 field.
func (s *Store) SetFloat32At(f FieldID, i int, v float32) error {
	b, err := s.elem(f, i, props.TypeFloat32)
	if err != nil {
		return err
	}
	buf.PutF32LE(b, v)
	return nil
}

// Float64 reads scalar field f.
func (s *Store) Float64(f FieldID) (float64, error) {
	b, err := s.elem(f, 0, props.TypeFloat64)
	if err != nil {
		return 0, err
	}
	return buf.F64LE(b), nil
}

// SetFloat64 writes scalar field f.
func (s *Store) SetFloat64(f FieldID, v float64) error {
	b, err := s.elem(f, 0, props.TypeFloat64)
	if err != nil {
		return err
	}
	buf.PutF64LE(b, v)
	return nil
}

// Int32 reads scalar field f.
func (s *Store) Int32(f FieldID) (int32, error) {
	b, err := s.elem(f, 0, props.TypeInt32)
	if err != nil {
		return 0, err
	}
	return int32(buf.U32LE(b)), nil
}

// SetInt32 writes scalar field f.
func (s *Store) SetInt32(f FieldID, v int32) error {
	b, err := s.elem(f, 0, props.TypeInt32)
	if err != nil {
		return err
	}
	buf.PutU32LE(b, uint32(v))
	return nil
}

// Int64 reads scalar field f.
func (s *Store) Int64(f FieldID) (int64, error) {
	b, err := s.elem(f, 0, props.TypeInt64)
	if err != nil {
		return 0, err
	}
	return int64(buf.U64LE(b)), nil
}

// SetInt64 writes scalar field f.
func (s *Store) SetInt64(f FieldID, v int64) error {
	b, err := s.elem(f, 0, props.TypeInt64)
	if err != nil {
		return err
	}
	buf.PutU64LE(b, uint64(v))
	return nil
}

// Uint64 reads scalar field f.
func (s *Store) Uint64(f FieldID) (uint64, error) {
	b, err := s.elem(f, 0, props.TypeUint64)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(b), nil
}

// SetUint64 writes scalar field f.
func (s *Store) SetUint64(f FieldID, v uint64) error {
	b, err := s.elem(f, 0, props.TypeUint64)
	if err != nil {
		return err
	}
	buf.PutU64LE(b, v)
	return nil
}

// Bool reads scalar field f.
func (s *Store) Bool(f FieldID) (bool, error) {
	b, err := s.elem(f, 0, props.TypeBool)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// SetBool writes scalar field f.
func (s *Store) SetBool(f FieldID, v bool) error {
	b, err := s.elem(f, 0, props.TypeBool)
	if err != nil {
		return err
	}
	b[0] = 0
	if v {
		b[0] = 1
	}
	return nil
}
