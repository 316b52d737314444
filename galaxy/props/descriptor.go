package props

import (
	"fmt"

	"github.com/joshuapare/galkit/pkg/types"
)

// TypeTag identifies the value type of an extension property.
type TypeTag uint8

// The zero TypeTag is invalid so that a forgotten field fails validation.
const (
	TypeInvalid TypeTag = iota
	TypeFloat32
	TypeFloat64
	TypeInt32
	TypeInt64
	TypeUint64
	TypeBool
	TypeStruct // opaque fixed-size struct
	TypeArray  // repeated elements of Descriptor.Elem
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeUint64:  "uint64",
	TypeBool:    "bool",
	TypeStruct:  "struct",
	TypeArray:   "array",
}

func (t TypeTag) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TypeTag(%d)", uint8(t))
}

// Valid reports whether t is one of the declared tags.
func (t TypeTag) Valid() bool { return t > TypeInvalid && t <= TypeArray }

// Scalar reports whether t is a fixed-width scalar.
func (t TypeTag) Scalar() bool { return t >= TypeFloat32 && t <= TypeBool }

// Width is the byte width of a scalar tag, or 0 for struct/array/invalid.
func (t TypeTag) Width() int {
	switch t {
	case TypeFloat32, TypeInt32:
		return 4
	case TypeFloat64, TypeInt64, TypeUint64:
		return 8
	case TypeBool:
		return 1
	default:
		return 0
	}
}

// ParseTypeTag maps a catalog string ("float64", "struct", ...) to its tag.
func ParseTypeTag(s string) (TypeTag, error) {
	for i, name := range typeNames {
		if i != int(TypeInvalid) && name == s {
			return TypeTag(i), nil
		}
	}
	if s == "opaque" || s == "opaque-struct" {
		return TypeStruct, nil
	}
	return TypeInvalid, fmt.Errorf("props: unknown type %q: %w", s, types.ErrInvalidArgument)
}

// Flags are per-property behavior bits.
type Flags uint32

const (
	FlagSerialize Flags = 1 << iota // written by output collaborators
	FlagZeroInit                    // zero-filled on first access
	FlagRequired                    // must be populated before output
	FlagReadOnly                    // typed setters refuse writes
	FlagDerived                     // computed from other properties
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagSerialize, "serialize"},
	{FlagZeroInit, "zero_init"},
	{FlagRequired, "required"},
	{FlagReadOnly, "read_only"},
	{FlagDerived, "derived"},
}

// ParseFlags maps catalog flag names to a bit set.
func ParseFlags(names []string) (Flags, error) {
	var out Flags
outer:
	for _, n := range names {
		for _, fn := range flagNames {
			if fn.name == n {
				out |= fn.f
				continue outer
			}
		}
		return 0, fmt.Errorf("props: unknown flag %q: %w", n, types.ErrInvalidArgument)
	}
	return out, nil
}

func (f Flags) String() string {
	s := ""
	for _, fn := range flagNames {
		if f.Has(fn.f) {
			if s != "" {
				s += "|"
			}
			s += fn.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Descriptor describes one extension property.
//
// ID is assigned by Registry.Register; any value set by the caller is ignored.
type Descriptor struct {
	Name   string
	Size   int // bytes per instance
	Module types.ModuleID
	ID     types.ExtensionID
	Type   TypeTag
	Elem   TypeTag // element type when Type == TypeArray (optional)
	Flags  Flags

	// Codec converts between the in-memory slot and a flat buffer. Scalars
	// and scalar arrays fall back to a built-in codec when nil.
	Codec Codec

	Description string
	Units       string
}

// Count is the number of repeated elements one instance holds: the element
// count for scalar arrays and 1 for everything else.
func (d *Descriptor) Count() int {
	if d.Type == TypeArray && d.Elem.Scalar() {
		return d.Size / d.Elem.Width()
	}
	return 1
}

// EffectiveCodec returns the codec used for serialization, or nil when none
// is available.
func (d *Descriptor) EffectiveCodec() Codec {
	if d.Codec != nil {
		return d.Codec
	}
	return builtinCodec(d)
}

// validate checks the descriptor in isolation; uniqueness and capacity are
// the registry's concern.
func (d *Descriptor) validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("props: empty name: %w", types.ErrInvalidArgument)
	case d.Size <= 0:
		return fmt.Errorf("props: %s: size %d must be positive: %w", d.Name, d.Size, types.ErrInvalidArgument)
	case d.Module < 0:
		return fmt.Errorf("props: %s: module id %d must be >= 0: %w", d.Name, d.Module, types.ErrInvalidArgument)
	case !d.Type.Valid():
		return fmt.Errorf("props: %s: invalid type tag %d: %w", d.Name, d.Type, types.ErrInvalidArgument)
	}

	if w := d.Type.Width(); w != 0 && d.Size != w {
		return fmt.Errorf("props: %s: size %d does not match %s width %d: %w",
			d.Name, d.Size, d.Type, w, types.ErrInvalidArgument)
	}
	if d.Type == TypeArray && d.Elem != TypeInvalid {
		if !d.Elem.Scalar() {
			return fmt.Errorf("props: %s: array element %s is not scalar: %w", d.Name, d.Elem, types.ErrInvalidArgument)
		}
		if d.Size%d.Elem.Width() != 0 {
			return fmt.Errorf("props: %s: size %d not a multiple of %s width: %w",
				d.Name, d.Size, d.Elem, types.ErrInvalidArgument)
		}
	}
	if rc, ok := d.Codec.(RawCodec); ok && (rc.Size <= 0 || rc.Size*d.Count() != d.Size) {
		return fmt.Errorf("props: %s: raw codec of %d bytes x %d does not cover size %d: %w",
			d.Name, rc.Size, d.Count(), d.Size, types.ErrInvalidArgument)
	}
	if d.Flags.Has(FlagSerialize) && d.EffectiveCodec() == nil {
		return fmt.Errorf("props: %s: serialize flag requires a codec for %s: %w", d.Name, d.Type, types.ErrInvalidArgument)
	}
	return nil
}
