package quickreader

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarsMatchEncodingBinary(t *testing.T) {
	rng := rand.New(rand.NewSource(20210501))
	lo, hi := binary.LittleEndian, binary.BigEndian

	for i := 0; i < 200; i++ {
		b := make([]byte, 8)
		rng.Read(b)
		newR := func() *Reader {
			return NewReader(FromChunks(append([]byte(nil), b...)), nil)
		}

		u8, err := newR().U8().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, b[0], u8)

		i8, err := newR().I8().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int8(b[0]), i8)

		u16, err := newR().U16().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, lo.Uint16(b), u16)

		i16, err := newR().I16BE().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int16(hi.Uint16(b)), i16)

		u32, err := newR().U32BE().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, hi.Uint32(b), u32)

		i32, err := newR().I32().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(lo.Uint32(b)), i32)

		u64, err := newR().U64().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, lo.Uint64(b), u64)

		u64b, err := newR().U64BE().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, hi.Uint64(b), u64b)

		i64, err := newR().I64BE().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(hi.Uint64(b)), i64)

		f64, err := newR().F64().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, lo.Uint64(b), math.Float64bits(f64))
	}
}

func TestScalarNegative(t *testing.T) {
	r := newReader(
		chunk(0xff),
		chunk(0xfe, 0xff),
		chunk(0xff, 0xff, 0xff, 0xfd),
		chunk(0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfc),
	)
	i8, err := r.I8().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	i16, err := r.I16().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	i32, err := r.I32BE().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(-3), i32)

	i64, err := r.I64BE().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), i64)
	assert.True(t, r.EOF())
}

func TestU32BEAcrossChunks(t *testing.T) {
	r := newReader(chunk(0x10, 0x11), chunk(0x12), chunk(0x13))
	res := r.U32BE()
	assert.False(t, res.Ready())
	v, err := res.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10111213), v)
	assert.True(t, r.EOF())
}

func TestScalarFromBuffer(t *testing.T) {
	r := newReader(chunk(0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07))
	require.NoError(t, r.Pull(ctx))

	res := r.U16()
	require.True(t, res.Ready())
	assert.Equal(t, uint16(0x0201), res.Value())

	res2 := r.U32BE()
	require.True(t, res2.Ready())
	assert.Equal(t, uint32(0x03040506), res2.Value())

	// 刚好读完当前chunk
	res3 := r.U8()
	assert.False(t, res3.Ready())
	v, err := res3.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x07), v)
	assert.True(t, r.EOF())
}

func TestU64AcrossChunks(t *testing.T) {
	r := newReader(
		chunk(0xaa, 0x01, 0x02, 0x03),
		chunk(0x04, 0x05),
		chunk(0x06, 0x07, 0x08, 0xbb),
	)
	_, err := r.U8().Get(ctx)
	require.NoError(t, err)

	v, err := r.U64BE().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v)

	tail, err := r.U8().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xbb), tail)
	assert.True(t, r.EOF())
}

func TestFloats(t *testing.T) {
	f32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(f32, math.Float32bits(1.5))
	f64 := make([]byte, 8)
	binary.BigEndian.PutUint64(f64, math.Float64bits(-2.25))

	r := newReader(step{data: f32[:3]}, step{data: append(f32[3:4:4], f64...)})
	v32, err := r.F32().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v32)

	v64, err := r.F64BE().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, -2.25, v64)
}

func TestFloatNaNPayload(t *testing.T) {
	const bits = 0x7ff8000000000abc
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, bits)

	r := newReader(step{data: b[:5]}, step{data: b[5:]})
	v, err := r.F64().Get(ctx)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
	assert.Equal(t, uint64(bits), math.Float64bits(v))
}

func TestScalarNoMoreData(t *testing.T) {
	r := newReader(chunk(1, 2, 3))
	_, err := r.U32().Get(ctx)
	assert.True(t, errors.Is(err, ErrNoMoreData))
	assert.True(t, r.EOF())
}
