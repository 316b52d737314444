package props

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

func TestScalarCodec_Float64(t *testing.T) {
	d := Descriptor{Name: "m", Size: 8, Type: TypeFloat64}
	c := d.EffectiveCodec()
	require.NotNil(t, c)

	src := make([]byte, 8)
	buf.PutF64LE(src, 1.25e10)
	dst := make([]byte, 8)
	n, err := c.Encode(dst, src, 1)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, 1.25e10, buf.F64LE(dst))

	back := make([]byte, 8)
	_, err = c.Decode(back, dst, 1)
	require.NoError(t, err)
	require.Equal(t, src, back)
}

func TestScalarCodec_ArrayCount(t *testing.T) {
	d := Descriptor{Name: "sfr", Size: 32, Type: TypeArray, Elem: TypeFloat32}
	require.Equal(t, 8, d.Count())
	c := d.EffectiveCodec()

	src := make([]byte, 32)
	for i := range 8 {
		buf.PutF32LE(src[i*4:], float32(i))
	}
	dst := make([]byte, 32)
	n, err := c.Encode(dst, src, d.Count())
	require.NoError(t, err)
	require.Equal(t, 32, n)
	require.Equal(t, float32(7), buf.F32LE(dst[28:]))

	_, err = c.Encode(make([]byte, 31), src, d.Count())
	require.ErrorIs(t, err, types.ErrOutOfBounds)
}

func TestScalarCodec_BoolNormalizes(t *testing.T) {
	c := ScalarCodec(TypeBool)
	dst := make([]byte, 1)
	_, err := c.Encode(dst, []byte{0x7F}, 1)
	require.NoError(t, err)
	require.Equal(t, byte(1), dst[0])
}

func TestBuiltinCodec_NoneForOpaque(t *testing.T) {
	d := Descriptor{Name: "s", Size: 12, Type: TypeStruct}
	require.Nil(t, d.EffectiveCodec())
	require.Nil(t, ScalarCodec(TypeArray))

	d.Codec = RawCodec{Size: 12}
	n, err := d.EffectiveCodec().Encode(make([]byte, 12), make([]byte, 12), 1)
	require.NoError(t, err)
	require.Equal(t, 12, n)
}
