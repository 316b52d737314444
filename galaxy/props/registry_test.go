package props

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/joshuapare/galkit/pkg/types"
)

func float32Desc(name string, module types.ModuleID) Descriptor {
	return Descriptor{Name: name, Size: 4, Module: module, Type: TypeFloat32}
}

// TestRegister_ThreePropertiesOneModule registers Cooling, Heating and
// RegionList under module 1.
func TestRegister_ThreePropertiesOneModule(t *testing.T) {
	reg := New()

	cooling, err := reg.Register(Descriptor{Name: "Cooling", Size: 4, Module: 1, Type: TypeFloat32})
	require.NoError(t, err)
	heating, err := reg.Register(Descriptor{Name: "Heating", Size: 8, Module: 1, Type: TypeFloat64})
	require.NoError(t, err)
	regions, err := reg.Register(Descriptor{Name: "RegionList", Size: 64, Module: 1, Type: TypeStruct})
	require.NoError(t, err)

	require.Equal(t, types.ExtensionID(0), cooling)
	require.Equal(t, types.ExtensionID(1), heating)
	require.Equal(t, types.ExtensionID(2), regions)

	all := reg.FindAllByModule(1)
	require.Len(t, all, 3)
	require.Equal(t, "Cooling", all[0].Name)
	require.Equal(t, "Heating", all[1].Name)
	require.Equal(t, "RegionList", all[2].Name)
	require.Equal(t, []types.ModuleID{1}, reg.Modules())
}

func TestRegister_Validation(t *testing.T) {
	reg := New()

	cases := []struct {
		name string
		desc Descriptor
	}{
		{"empty name", Descriptor{Size: 4, Type: TypeFloat32}},
		{"zero size", Descriptor{Name: "a", Type: TypeStruct}},
		{"negative module", Descriptor{Name: "a", Size: 4, Module: -1, Type: TypeFloat32}},
		{"invalid tag", Descriptor{Name: "a", Size: 4}},
		{"unknown tag", Descriptor{Name: "a", Size: 4, Type: TypeTag(99)}},
		{"width mismatch", Descriptor{Name: "a", Size: 8, Type: TypeFloat32}},
		{"array ragged", Descriptor{Name: "a", Size: 10, Type: TypeArray, Elem: TypeFloat64}},
		{"array of struct", Descriptor{Name: "a", Size: 16, Type: TypeArray, Elem: TypeStruct}},
		{"serialize struct without codec", Descriptor{Name: "a", Size: 16, Type: TypeStruct, Flags: FlagSerialize}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := reg.Register(tc.desc)
			require.ErrorIs(t, err, types.ErrInvalidArgument)
			require.Equal(t, types.InvalidExtension, id)
		})
	}
	require.Zero(t, reg.Len(), "failed registrations must not consume ids")
}

func TestRegister_SerializeWithCodec(t *testing.T) {
	reg := New()
	_, err := reg.Register(Descriptor{Name: "blob", Size: 16, Type: TypeStruct, Flags: FlagSerialize, Codec: RawCodec{Size: 16}})
	require.NoError(t, err)
	_, err = reg.Register(Descriptor{Name: "sfr", Size: 64, Type: TypeArray, Elem: TypeFloat64, Flags: FlagSerialize})
	require.NoError(t, err)
	_, err = reg.Register(Descriptor{Name: "mass", Size: 8, Type: TypeFloat64, Flags: FlagSerialize})
	require.NoError(t, err)
}

func TestRegister_RawCodecMustCoverSize(t *testing.T) {
	reg := New()
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"short", Descriptor{Name: "half", Size: 64, Type: TypeStruct, Flags: FlagSerialize, Codec: RawCodec{Size: 32}}},
		{"zero", Descriptor{Name: "zero", Size: 64, Type: TypeStruct, Flags: FlagSerialize, Codec: RawCodec{}}},
		{"array elements", Descriptor{Name: "sfh", Size: 40, Type: TypeArray, Elem: TypeFloat32, Codec: RawCodec{Size: 40}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Register(tt.d)
			require.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
	require.Zero(t, reg.Len())

	_, err := reg.Register(Descriptor{Name: "sfh", Size: 40, Type: TypeArray, Elem: TypeFloat32, Codec: RawCodec{Size: 4}})
	require.NoError(t, err)
}

func TestRegister_DuplicateNameAcrossModules(t *testing.T) {
	reg := New()
	_, err := reg.Register(float32Desc("Cooling", 1))
	require.NoError(t, err)

	_, err = reg.Register(float32Desc("Cooling", 2))
	require.ErrorIs(t, err, types.ErrDuplicateName)
	require.True(t, types.IsKind(err, types.ErrKindAlreadyExists))
	require.Equal(t, 1, reg.Len())
}

func TestRegister_CapacityExhausted(t *testing.T) {
	reg := New(WithLimits(types.Limits{MaxProperties: 3, MaxModules: 2}))
	for i := range 3 {
		_, err := reg.Register(float32Desc(fmt.Sprintf("p%d", i), 0))
		require.NoError(t, err)
	}
	_, err := reg.Register(float32Desc("overflow", 0))
	require.ErrorIs(t, err, types.ErrResourceExhausted)
}

func TestRegister_ModuleCapacityExhausted(t *testing.T) {
	reg := New(WithLimits(types.Limits{MaxProperties: 10, MaxModules: 2}))
	_, err := reg.Register(float32Desc("a", 1))
	require.NoError(t, err)
	_, err = reg.Register(float32Desc("b", 2))
	require.NoError(t, err)

	_, err = reg.Register(float32Desc("c", 3))
	require.ErrorIs(t, err, types.ErrResourceExhausted)

	// Existing modules can keep registering.
	_, err = reg.Register(float32Desc("d", 1))
	require.NoError(t, err)
}

func TestUnregister_IdsNeverReused(t *testing.T) {
	reg := New()
	a, err := reg.Register(float32Desc("a", 1))
	require.NoError(t, err)
	b, err := reg.Register(float32Desc("b", 1))
	require.NoError(t, err)

	require.NoError(t, reg.Unregister(a))

	_, ok := reg.FindByID(a)
	require.False(t, ok)
	_, ok = reg.FindByName("a")
	require.False(t, ok)
	require.Equal(t, 2, reg.Len(), "total count unchanged")
	require.Equal(t, 1, reg.Live())

	got, ok := reg.FindByID(b)
	require.True(t, ok)
	require.Equal(t, "b", got.Name)

	c, err := reg.Register(float32Desc("a", 1))
	require.NoError(t, err)
	require.Greater(t, c, b, "new id must be higher than every issued id")
}

func TestUnregister_DoubleAndUnknown(t *testing.T) {
	reg := New()
	id, err := reg.Register(float32Desc("a", 1))
	require.NoError(t, err)
	require.NoError(t, reg.Unregister(id))

	require.ErrorIs(t, reg.Unregister(id), types.ErrNotFound)
	require.ErrorIs(t, reg.Unregister(42), types.ErrNotFound)
	require.ErrorIs(t, reg.Unregister(-1), types.ErrNotFound)
}

func TestUnregister_RemovesEmptyModuleGroup(t *testing.T) {
	reg := New(WithLimits(types.Limits{MaxProperties: 10, MaxModules: 1}))
	id, err := reg.Register(float32Desc("a", 1))
	require.NoError(t, err)
	require.NoError(t, reg.Unregister(id))
	require.Empty(t, reg.Modules())
	require.Nil(t, reg.FindAllByModule(1))

	// The freed module slot is available to another module.
	_, err = reg.Register(float32Desc("b", 2))
	require.NoError(t, err)
}

// TestModuleGrouping_Interleaved covers modules registering out of order.
// Each module must still see exactly its own properties.
func TestModuleGrouping_Interleaved(t *testing.T) {
	reg := New()
	a1, _ := reg.Register(float32Desc("a1", 1))
	b1, _ := reg.Register(float32Desc("b1", 2))
	a2, _ := reg.Register(float32Desc("a2", 1))
	b2, _ := reg.Register(float32Desc("b2", 2))

	modA := reg.FindAllByModule(1)
	require.Len(t, modA, 2)
	assert.Equal(t, a1, modA[0].ID)
	assert.Equal(t, a2, modA[1].ID)

	id, err := reg.ModuleExtension(2, 1)
	require.NoError(t, err)
	assert.Equal(t, b2, id)
	id, err = reg.ModuleExtension(2, 0)
	require.NoError(t, err)
	assert.Equal(t, b1, id)

	_, err = reg.ModuleExtension(1, 2)
	require.ErrorIs(t, err, types.ErrOutOfBounds)
	_, err = reg.ModuleExtension(9, 0)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestClose_InvalidatesIds(t *testing.T) {
	reg := New()
	id, err := reg.Register(float32Desc("a", 1))
	require.NoError(t, err)

	reg.Close()
	reg.Close() // idempotent
	require.True(t, reg.Closed())

	_, ok := reg.FindByID(id)
	require.False(t, ok)
	require.Zero(t, reg.Len())
	_, err = reg.Register(float32Desc("b", 1))
	require.ErrorIs(t, err, types.ErrNotInitialized)
	require.ErrorIs(t, reg.Unregister(id), types.ErrNotInitialized)
}

func TestGlobalLifecycle(t *testing.T) {
	Teardown()
	t.Cleanup(Teardown)

	_, err := Default()
	require.ErrorIs(t, err, types.ErrNotInitialized)

	reg, err := Initialize()
	require.NoError(t, err)

	_, err = Initialize()
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)

	got, err := Default()
	require.NoError(t, err)
	require.Same(t, reg, got)

	Teardown()
	require.True(t, reg.Closed())
	_, err = Initialize()
	require.NoError(t, err, "re-initialization after teardown is allowed")
}

func TestParseTypeTagAndFlags(t *testing.T) {
	tag, err := ParseTypeTag("float64")
	require.NoError(t, err)
	require.Equal(t, TypeFloat64, tag)
	tag, err = ParseTypeTag("opaque-struct")
	require.NoError(t, err)
	require.Equal(t, TypeStruct, tag)
	_, err = ParseTypeTag("complex128")
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	f, err := ParseFlags([]string{"serialize", "zero_init"})
	require.NoError(t, err)
	require.True(t, f.Has(FlagSerialize|FlagZeroInit))
	require.Equal(t, "serialize|zero_init", f.String())
	_, err = ParseFlags([]string{"sticky"})
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

// TestRegistry_IdsStrictlyIncreasing checks that ids are dense from 0, never
// reused, and resolvable by id and name while live.
func TestRegistry_IdsStrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := New()
		live := map[types.ExtensionID]string{}
		next := types.ExtensionID(0)
		n := rapid.IntRange(1, 60).Draw(t, "ops")

		for i := range n {
			if len(live) > 0 && rapid.Bool().Draw(t, "unregister") {
				var victim types.ExtensionID
				for id := range live {
					victim = id
					break
				}
				if err := reg.Unregister(victim); err != nil {
					t.Fatalf("unregister %d: %v", victim, err)
				}
				delete(live, victim)
				continue
			}
			name := fmt.Sprintf("p%d", i)
			module := types.ModuleID(rapid.IntRange(0, 4).Draw(t, "module"))
			id, err := reg.Register(float32Desc(name, module))
			if err != nil {
				t.Fatalf("register %s: %v", name, err)
			}
			if id != next {
				t.Fatalf("got id %d, want %d", id, next)
			}
			next++
			live[id] = name
		}

		if reg.Len() != int(next) {
			t.Fatalf("Len=%d want %d", reg.Len(), next)
		}
		for id, name := range live {
			d, ok := reg.FindByID(id)
			if !ok || d.Name != name {
				t.Fatalf("id %d unresolvable", id)
			}
			d, ok = reg.FindByName(name)
			if !ok || d.ID != id {
				t.Fatalf("name %s unresolvable", name)
			}
		}
	})
}
