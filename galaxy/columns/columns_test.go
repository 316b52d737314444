package columns

import (
	"bytes"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/array"
	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/galaxy/store"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

type fixture struct {
	env     *galaxy.Env
	cooling types.ExtensionID
	sfh     types.ExtensionID
	scratch types.ExtensionID
	arr     *array.Array
}

func newFixture(t *testing.T, rows int) *fixture {
	t.Helper()
	reg := props.New()
	f := &fixture{}
	var err error
	f.cooling, err = reg.Register(props.Descriptor{Name: "Cooling", Size: 8, Module: 1, Type: props.TypeFloat64, Flags: props.FlagSerialize, Units: "erg/s"})
	require.NoError(t, err)
	f.sfh, err = reg.Register(props.Descriptor{Name: "SFH", Size: 16, Module: 2, Type: props.TypeArray, Elem: props.TypeFloat32, Flags: props.FlagSerialize})
	require.NoError(t, err)
	f.scratch, err = reg.Register(props.Descriptor{Name: "Scratch", Size: 4, Module: 2, Type: props.TypeInt32})
	require.NoError(t, err)

	f.env, err = galaxy.NewEnv(reg, nil)
	require.NoError(t, err)
	f.arr, err = array.New(f.env)
	require.NoError(t, err)

	src, err := galaxy.New(f.env)
	require.NoError(t, err)
	st, _ := src.Store(f.env)
	for i := range rows {
		require.NoError(t, src.Ext.Init(reg))
		// Odd rows leave Cooling unpopulated.
		if i%2 == 0 {
			require.NoError(t, src.Ext.SetFloat64(reg, f.cooling, float64(i)*1.5))
		}
		sfh, err := src.Ext.Get(reg, f.sfh)
		require.NoError(t, err)
		for k := range 4 {
			buf.PutF32LE(sfh[k*4:], float32(i*10+k))
		}
		require.NoError(t, st.SetFloat32(store.StellarMass, float32(i)))
		_, err = f.arr.Append(src)
		require.NoError(t, err)
	}
	return f
}

func TestExtensions_SerializeFlaggedOnly(t *testing.T) {
	f := newFixture(t, 4)
	cols, err := Extensions(f.env.Registry, f.arr.RawView())
	require.NoError(t, err)
	require.Len(t, cols, 2)

	cool := cols[0]
	require.Equal(t, "Cooling", cool.Name)
	require.Equal(t, SourceExtension, cool.Source)
	require.Equal(t, props.TypeFloat64, cool.Type)
	require.Equal(t, 4, cool.Rows)
	require.Equal(t, "erg/s", cool.Units)
	require.Equal(t, 3.0, buf.F64LE(cool.Row(2)))
	require.Equal(t, 0.0, buf.F64LE(cool.Row(1)), "unpopulated rows are zero")

	sfh := cols[1]
	require.Equal(t, props.TypeFloat32, sfh.Type)
	require.Equal(t, 4, sfh.Count)
	require.Equal(t, float32(33), buf.F32LE(sfh.Row(3)[12:]))
	require.Nil(t, sfh.Row(4))
}

func TestStore_Columns(t *testing.T) {
	f := newFixture(t, 3)
	cols, err := Store(f.env, f.arr.RawView(), store.StellarMass, store.SfrDisk)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	require.Equal(t, "StellarMass", cols[0].Name)
	require.Equal(t, float32(2), buf.F32LE(cols[0].Row(2)))
	require.Equal(t, store.Steps, cols[1].Count)

	all, err := Store(f.env, f.arr.RawView())
	require.NoError(t, err)
	require.Len(t, all, f.env.Stores.Schema().Len())

	_, err = Store(f.env, f.arr.RawView(), store.FieldID(500))
	require.ErrorIs(t, err, types.ErrOutOfBounds)
}

func TestEncodeDecode_RestoreExtensions(t *testing.T) {
	f := newFixture(t, 5)
	reg := f.env.Registry
	cols, err := Extensions(reg, f.arr.RawView())
	require.NoError(t, err)
	storeCols, err := Store(f.env, f.arr.RawView(), store.StellarMass)
	require.NoError(t, err)
	cols = append(cols, storeCols...)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, cols))

	back, err := Decode(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	require.Equal(t, cols, back)

	// Restore into fresh records.
	dst := make([]galaxy.Galaxy, 5)
	for i := range dst {
		require.NoError(t, galaxy.Init(f.env, &dst[i]))
	}
	require.NoError(t, RestoreExtensions(reg, dst, back))
	v, err := dst[4].Ext.Float64(reg, f.cooling)
	require.NoError(t, err)
	require.Equal(t, 6.0, v)
	sfh, ok := dst[1].Ext.Peek(f.sfh)
	require.True(t, ok)
	require.Equal(t, float32(12), buf.F32LE(sfh[8:]))
	require.False(t, dst[0].Ext.Populated(f.scratch))

	require.ErrorIs(t, RestoreExtensions(reg, dst[:2], back), types.ErrOutOfBounds)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not snappy")))
	require.ErrorIs(t, err, ErrCorrupt)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, nil))
	cols, err := Decode(&out)
	require.NoError(t, err)
	require.Empty(t, cols)
}

// truncatedStream returns a well-framed stream holding one column header
// that claims width*rows bytes of data, followed by only have bytes.
func truncatedStream(t *testing.T, width, rows uint32, have int) []byte {
	t.Helper()
	var out bytes.Buffer
	sw := snappy.NewBufferedWriter(&out)
	var hdr [12]byte
	copy(hdr[:8], magic[:])
	buf.PutU32LE(hdr[8:], 1)
	_, err := sw.Write(hdr[:])
	require.NoError(t, err)
	require.NoError(t, writeString(sw, "Huge"))
	var fixed [14]byte
	fixed[0] = byte(SourceExtension)
	fixed[1] = byte(props.TypeFloat32)
	buf.PutU32LE(fixed[2:], 1)
	buf.PutU32LE(fixed[6:], width)
	buf.PutU32LE(fixed[10:], rows)
	_, err = sw.Write(fixed[:])
	require.NoError(t, err)
	require.NoError(t, writeString(sw, ""))
	_, err = sw.Write(make([]byte, have))
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	return out.Bytes()
}

func TestDecode_CorruptSizeClaim(t *testing.T) {
	// 16 TiB claimed by a stream of a few dozen bytes.
	stream := truncatedStream(t, 1<<22, 1<<22, 0)
	_, err := Decode(bytes.NewReader(stream))
	require.ErrorIs(t, err, ErrCorrupt)

	// Short data for a modest claim.
	stream = truncatedStream(t, 4, 10, 12)
	_, err = Decode(bytes.NewReader(stream))
	require.ErrorIs(t, err, ErrCorrupt)

	// Exactly enough data decodes.
	stream = truncatedStream(t, 4, 10, 40)
	cols, err := Decode(bytes.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cols, 1)
	require.Len(t, cols[0].Data, 40)
}

func TestEncode_RejectsInconsistentColumn(t *testing.T) {
	var out bytes.Buffer
	err := Encode(&out, []Column{{Name: "x", Width: 4, Rows: 2, Data: make([]byte, 7)}})
	require.ErrorIs(t, err, types.ErrOutOfBounds)
}
