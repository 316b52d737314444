// Package store holds the authoritative block of core scientific properties
// for each galaxy and the handle table that owns those blocks.
//
// A Schema fixes the byte layout of a Store. Every field is either a scalar
// or a fixed-length array of scalars, using the same type tags as the
// extension registry, so the two access paths share one vocabulary:
// statically known fields through Store accessors, registered extensions
// through galaxy/ext.
//
// Galaxies never hold a *Store. They hold a Handle, which the Table resolves
// after checking its generation. Releasing a handle bumps the slot's
// generation so every stale copy fails loudly instead of aliasing a new
// tenant's data.
package store

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

// FieldID indexes a field within its Schema.
type FieldID int

// FieldSpec declares one field when building a Schema. Count is the number
// of elements; zero or one means a scalar.
type FieldSpec struct {
	Name  string
	Type  props.TypeTag
	Count int
	Units string
}

// Field is a laid-out FieldSpec.
type Field struct {
	FieldSpec
	ID     FieldID
	Offset int
	Size   int
}

// Schema is an immutable store layout.
type Schema struct {
	fields []Field
	byName map[string]FieldID
	size   int
}

// NewSchema lays out specs in order, each field aligned to its element
// width. Names must be unique and types scalar.
func NewSchema(specs ...FieldSpec) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(specs)),
		byName: make(map[string]FieldID, len(specs)),
	}
	off := 0
	for i, fs := range specs {
		if fs.Name == "" {
			return nil, fmt.Errorf("store: field %d: empty name: %w", i, types.ErrInvalidArgument)
		}
		if !fs.Type.Scalar() {
			return nil, fmt.Errorf("store: field %q: type %s is not scalar: %w", fs.Name, fs.Type, types.ErrInvalidArgument)
		}
		if _, dup := s.byName[fs.Name]; dup {
			return nil, fmt.Errorf("store: field %q: %w", fs.Name, types.ErrDuplicateName)
		}
		if fs.Count <= 0 {
			fs.Count = 1
		}
		w := fs.Type.Width()
		aligned, ok := buf.RoundUp(off, w)
		if !ok {
			return nil, fmt.Errorf("store: field %q: %w", fs.Name, types.ErrOutOfBounds)
		}
		size, ok := buf.MulOverflowSafe(w, fs.Count)
		if !ok {
			return nil, fmt.Errorf("store: field %q: %w", fs.Name, types.ErrOutOfBounds)
		}
		end, ok := buf.AddOverflowSafe(aligned, size)
		if !ok {
			return nil, fmt.Errorf("store: field %q: %w", fs.Name, types.ErrOutOfBounds)
		}
		id := FieldID(len(s.fields))
		s.fields = append(s.fields, Field{FieldSpec: fs, ID: id, Offset: aligned, Size: size})
		s.byName[fs.Name] = id
		off = end
	}
	// Pad to 8 so stores pack cleanly in column dumps.
	s.size, _ = buf.RoundUp(off, 8)
	return s, nil
}

// Size is the byte size of one Store under this schema.
func (s *Schema) Size() int { return s.size }

// Len is the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the laid-out fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the field with id.
func (s *Schema) Field(id FieldID) (Field, bool) {
	if id < 0 || int(id) >= len(s.fields) {
		return Field{}, false
	}
	return s.fields[id], true
}

// Lookup resolves a field by name.
func (s *Schema) Lookup(name string) (FieldID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Steps is the number of integration substeps per snapshot recorded in the
// star-formation history arrays.
const Steps = 10

// Core field ids of the schema returned by Core.
const (
	ColdGas FieldID = iota
	StellarMass
	BulgeMass
	HotGas
	EjectedMass
	BlackHoleMass
	ICS
	MetalsColdGas
	MetalsStellarMass
	MetalsBulgeMass
	MetalsHotGas
	MetalsEjectedMass
	MetalsICS
	Cooling
	Heating
	DiskScaleRadius
	OutflowRate
	TimeOfLastMajorMerger
	TimeOfLastMinorMerger
	QuasarModeBHaccretionMass
	SfrDisk
	SfrBulge
	SfrDiskColdGas
	SfrBulgeColdGas
	MergeType
	Disrupted
)

var coreSpecs = []FieldSpec{
	ColdGas:                   {Name: "ColdGas", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	StellarMass:               {Name: "StellarMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	BulgeMass:                 {Name: "BulgeMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	HotGas:                    {Name: "HotGas", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	EjectedMass:               {Name: "EjectedMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	BlackHoleMass:             {Name: "BlackHoleMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	ICS:                       {Name: "ICS", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	MetalsColdGas:             {Name: "MetalsColdGas", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	MetalsStellarMass:         {Name: "MetalsStellarMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	MetalsBulgeMass:           {Name: "MetalsBulgeMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	MetalsHotGas:              {Name: "MetalsHotGas", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	MetalsEjectedMass:         {Name: "MetalsEjectedMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	MetalsICS:                 {Name: "MetalsICS", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	Cooling:                   {Name: "Cooling", Type: props.TypeFloat64, Units: "erg/s"},
	Heating:                   {Name: "Heating", Type: props.TypeFloat64, Units: "erg/s"},
	DiskScaleRadius:           {Name: "DiskScaleRadius", Type: props.TypeFloat32, Units: "Mpc/h"},
	OutflowRate:               {Name: "OutflowRate", Type: props.TypeFloat32, Units: "Msun/yr"},
	TimeOfLastMajorMerger:     {Name: "TimeOfLastMajorMerger", Type: props.TypeFloat32, Units: "Myr/h"},
	TimeOfLastMinorMerger:     {Name: "TimeOfLastMinorMerger", Type: props.TypeFloat32, Units: "Myr/h"},
	QuasarModeBHaccretionMass: {Name: "QuasarModeBHaccretionMass", Type: props.TypeFloat32, Units: "1e10 Msun/h"},
	SfrDisk:                   {Name: "SfrDisk", Type: props.TypeFloat32, Count: Steps, Units: "Msun/yr"},
	SfrBulge:                  {Name: "SfrBulge", Type: props.TypeFloat32, Count: Steps, Units: "Msun/yr"},
	SfrDiskColdGas:            {Name: "SfrDiskColdGas", Type: props.TypeFloat32, Count: Steps, Units: "1e10 Msun/h"},
	SfrBulgeColdGas:           {Name: "SfrBulgeColdGas", Type: props.TypeFloat32, Count: Steps, Units: "1e10 Msun/h"},
	MergeType:                 {Name: "MergeType", Type: props.TypeInt32},
	Disrupted:                 {Name: "Disrupted", Type: props.TypeBool},
}

// Core returns a fresh copy of the core galaxy schema. The FieldID
// constants above index it.
func Core() *Schema {
	s, err := NewSchema(coreSpecs...)
	if err != nil {
		// coreSpecs is static; a failure here is a programming error.
		panic(err)
	}
	return s
}
