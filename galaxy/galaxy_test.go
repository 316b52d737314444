package galaxy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/galaxy/store"
	"github.com/joshuapare/galkit/pkg/types"
)

func testEnv(t *testing.T) (*Env, types.ExtensionID) {
	t.Helper()
	reg := props.New()
	id, err := reg.Register(props.Descriptor{Name: "CoolingRate", Size: 8, Module: 1, Type: props.TypeFloat64})
	require.NoError(t, err)
	env, err := NewEnv(reg, nil)
	require.NoError(t, err)
	return env, id
}

func TestNewEnv(t *testing.T) {
	_, err := NewEnv(nil, nil)
	require.ErrorIs(t, err, types.ErrNotInitialized)

	reg := props.New()
	env, err := NewEnv(reg, nil)
	require.NoError(t, err)
	require.NotNil(t, env.Stores)

	reg.Close()
	require.ErrorIs(t, env.Validate(), types.ErrNotInitialized)
	require.ErrorIs(t, (*Env)(nil).Validate(), types.ErrInvalidArgument)
}

func TestNew_FreshRecord(t *testing.T) {
	env, id := testEnv(t)
	g, err := New(env)
	require.NoError(t, err)

	require.Equal(t, 1, g.Ext.Len())
	require.Zero(t, g.Ext.PopulatedCount())
	require.True(t, env.Stores.Valid(g.Props))
	require.Equal(t, 1, env.Stores.Live())

	require.NoError(t, g.Ext.SetFloat64(env.Registry, id, 2.5))
	st, err := g.Store(env)
	require.NoError(t, err)
	require.NoError(t, st.SetFloat32(store.ColdGas, 1))

	require.NoError(t, Free(env, g))
	require.Zero(t, env.Stores.Live())
	require.True(t, g.Ext.Empty())
	require.True(t, g.Props.IsNil())
	require.NoError(t, Free(env, g), "second free is a no-op")
}

func TestInit_ReleasesPreviousStore(t *testing.T) {
	env, _ := testEnv(t)
	g, err := New(env)
	require.NoError(t, err)
	old := g.Props
	g.SnapNum = 63

	require.NoError(t, Init(env, g))
	require.False(t, env.Stores.Valid(old))
	require.Equal(t, 1, env.Stores.Live())
	require.Zero(t, g.SnapNum)
}

func TestRecycle_KeepsStaleValues(t *testing.T) {
	env, id := testEnv(t)
	g, err := New(env)
	require.NoError(t, err)
	g.GalaxyNr = 17
	st, _ := g.Store(env)
	require.NoError(t, st.SetFloat32(store.StellarMass, 8))
	require.NoError(t, g.Ext.SetFloat64(env.Registry, id, 1))
	h := g.Props

	require.NoError(t, Recycle(env, g))
	require.Equal(t, int32(17), g.GalaxyNr)
	require.Equal(t, h, g.Props)
	v, _ := st.Float32(store.StellarMass)
	require.Equal(t, float32(8), v)
	require.Zero(t, g.Ext.PopulatedCount())
}

func TestRecycle_AllocatesMissingStore(t *testing.T) {
	env, _ := testEnv(t)
	var g Galaxy
	require.NoError(t, Recycle(env, &g))
	require.True(t, env.Stores.Valid(g.Props))
	require.ErrorIs(t, Recycle(env, nil), types.ErrInvalidArgument)
}

func TestCopy_Deep(t *testing.T) {
	env, id := testEnv(t)
	src, err := New(env)
	require.NoError(t, err)
	src.Mvir = 12.5
	src.Pos = [3]float32{1, 2, 3}
	require.NoError(t, src.Ext.SetFloat64(env.Registry, id, 4))
	sst, _ := src.Store(env)
	require.NoError(t, sst.SetFloat32(store.HotGas, 2))

	dst, err := New(env)
	require.NoError(t, err)
	oldDst := dst.Props

	require.NoError(t, Copy(env, dst, src))
	require.Equal(t, src.Fields, dst.Fields)
	require.NotEqual(t, src.Props, dst.Props)
	require.False(t, env.Stores.Valid(oldDst))
	require.Equal(t, 2, env.Stores.Live())

	dst2, _ := dst.Store(env)
	v, _ := dst2.Float32(store.HotGas)
	require.Equal(t, float32(2), v)
	require.NoError(t, dst2.SetFloat32(store.HotGas, 5))
	v, _ = sst.Float32(store.HotGas)
	require.Equal(t, float32(2), v, "store is cloned, not shared")

	require.NoError(t, dst.Ext.SetFloat64(env.Registry, id, 9))
	x, _ := src.Ext.Float64(env.Registry, id)
	require.Equal(t, 4.0, x, "extensions are copied, not shared")
}

func TestCopy_FailureLeavesDestination(t *testing.T) {
	env, _ := testEnv(t)
	src, _ := New(env)
	dst, _ := New(env)
	dst.HaloNr = 5
	keep := dst.Props
	require.NoError(t, env.Stores.Release(src.Props))

	err := Copy(env, dst, src)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	require.Equal(t, int32(5), dst.HaloNr)
	require.Equal(t, keep, dst.Props)
	require.True(t, env.Stores.Valid(keep))

	require.ErrorIs(t, Copy(env, nil, src), types.ErrInvalidArgument)
}
