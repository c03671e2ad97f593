package quickreader

import (
	"context"
	"encoding/binary"
	"math"
)

// 定宽数值解码表. 多字节整数按字节序显式组合, 有符号数由无符号数按位转换得到,
// 浮点数按IEEE-754位模式重新解释, 与主机字节序无关.
var (
	le = binary.LittleEndian
	be = binary.BigEndian
)

func u8(b []byte) uint8 { return b[0] }
func i8(b []byte) int8  { return int8(b[0]) }

func u16le(b []byte) uint16 { return le.Uint16(b) }
func u16be(b []byte) uint16 { return be.Uint16(b) }
func i16le(b []byte) int16  { return int16(le.Uint16(b)) }
func i16be(b []byte) int16  { return int16(be.Uint16(b)) }

func i32le(b []byte) int32  { return int32(le.Uint32(b)) }
func i32be(b []byte) int32  { return int32(be.Uint32(b)) }
func u32le(b []byte) uint32 { return uint32(i32le(b)) }
func u32be(b []byte) uint32 { return uint32(i32be(b)) }

func u64le(b []byte) uint64 { return uint64(u32le(b)) | uint64(u32le(b[4:]))<<32 }
func u64be(b []byte) uint64 { return uint64(u32be(b))<<32 | uint64(u32be(b[4:])) }
func i64le(b []byte) int64  { return int64(u64le(b)) }
func i64be(b []byte) int64  { return int64(u64be(b)) }

func f32le(b []byte) float32 { return math.Float32frombits(u32le(b)) }
func f32be(b []byte) float32 { return math.Float32frombits(u32be(b)) }
func f64le(b []byte) float64 { return math.Float64frombits(u64le(b)) }
func f64be(b []byte) float64 { return math.Float64frombits(u64be(b)) }

// readScalar 读取n个字节并用dec解码, 跨chunk时复用定长读取的拼接逻辑.
func readScalar[T any](r *Reader, n int, dec func([]byte) T) Result[T] {
	r.checkIdle()
	buf, pos := r.buf, r.off
	end := pos + n
	if end < len(buf) {
		r.off = end
		return ready(dec(buf[pos:end]))
	}
	if end == len(buf) {
		r.off = end
		return drained(r, dec(buf[pos:end]))
	}
	return deferred(r, func(ctx context.Context) (T, error) {
		b, err := r.assemble(ctx, n)
		if err != nil {
			var zero T
			return zero, err
		}
		return dec(b), nil
	})
}

// U8 读取uint8.
func (r *Reader) U8() Result[uint8] { return readScalar(r, 1, u8) }

// I8 读取int8.
func (r *Reader) I8() Result[int8] { return readScalar(r, 1, i8) }

// U16 读取uint16, 小端序.
func (r *Reader) U16() Result[uint16] { return readScalar(r, 2, u16le) }

// I16 读取int16, 小端序.
func (r *Reader) I16() Result[int16] { return readScalar(r, 2, i16le) }

// U32 读取uint32, 小端序.
func (r *Reader) U32() Result[uint32] { return readScalar(r, 4, u32le) }

// I32 读取int32, 小端序.
func (r *Reader) I32() Result[int32] { return readScalar(r, 4, i32le) }

// U64 读取uint64, 小端序.
func (r *Reader) U64() Result[uint64] { return readScalar(r, 8, u64le) }

// I64 读取int64, 小端序.
func (r *Reader) I64() Result[int64] { return readScalar(r, 8, i64le) }

// F32 读取float32, 小端序.
func (r *Reader) F32() Result[float32] { return readScalar(r, 4, f32le) }

// F64 读取float64, 小端序.
func (r *Reader) F64() Result[float64] { return readScalar(r, 8, f64le) }

// U16BE 读取uint16, 大端序.
func (r *Reader) U16BE() Result[uint16] { return readScalar(r, 2, u16be) }

// I16BE 读取int16, 大端序.
func (r *Reader) I16BE() Result[int16] { return readScalar(r, 2, i16be) }

// U32BE 读取uint32, 大端序.
func (r *Reader) U32BE() Result[uint32] { return readScalar(r, 4, u32be) }

// I32BE 读取int32, 大端序.
func (r *Reader) I32BE() Result[int32] { return readScalar(r, 4, i32be) }

// U64BE 读取uint64, 大端序.
func (r *Reader) U64BE() Result[uint64] { return readScalar(r, 8, u64be) }

// I64BE 读取int64, 大端序.
func (r *Reader) I64BE() Result[int64] { return readScalar(r, 8, i64be) }

// F32BE 读取float32, 大端序.
func (r *Reader) F32BE() Result[float32] { return readScalar(r, 4, f32be) }

// F64BE 读取float64, 大端序.
func (r *Reader) F64BE() Result[float64] { return readScalar(r, 8, f64be) }
