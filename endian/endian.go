// Package endian 提供字节序固定的标量类型
//
// LittleXX / BigXX 在内存中的字节排列与宿主字节序无关，
// 读取时（Get）做一次字节序转换，因此可以直接覆盖到文件或网络中读来的字节上。
package endian

import (
	"encoding/binary"
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
	"golang.org/x/sys/cpu"
)

// IsLittleEndianSystem reports whether the host stores integers
// least-significant byte first.
var IsLittleEndianSystem = !cpu.IsBigEndian

// IsBigEndianSystem reports whether the host stores integers
// most-significant byte first.
var IsBigEndianSystem = cpu.IsBigEndian

// SwapEndian 反转 x 的字节顺序
func SwapEndian[T constraints.Unsigned](x T) T {
	switch unsafe.Sizeof(x) {
	case 1:
		return x
	case 2:
		return T(bits.ReverseBytes16(uint16(x)))
	case 4:
		return T(bits.ReverseBytes32(uint32(x)))
	default:
		return T(bits.ReverseBytes64(uint64(x)))
	}
}

// Little16 is a uint16 stored little-endian.
type Little16 [2]byte

// Little32 is a uint32 stored little-endian.
type Little32 [4]byte

// Little64 is a uint64 stored little-endian. Its alignment is 1, so a
// []Little64 may overlay any byte buffer.
type Little64 [8]byte

// Big16 is a uint16 stored big-endian.
type Big16 [2]byte

// Big32 is a uint32 stored big-endian.
type Big32 [4]byte

// Big64 is a uint64 stored big-endian.
type Big64 [8]byte

func NewLittle16(v uint16) (s Little16) { s.Set(v); return }
func NewLittle32(v uint32) (s Little32) { s.Set(v); return }
func NewLittle64(v uint64) (s Little64) { s.Set(v); return }
func NewBig16(v uint16) (s Big16)       { s.Set(v); return }
func NewBig32(v uint32) (s Big32)       { s.Set(v); return }
func NewBig64(v uint64) (s Big64)       { s.Set(v); return }

func (s Little16) Get() uint16   { return binary.LittleEndian.Uint16(s[:]) }
func (s *Little16) Set(v uint16) { binary.LittleEndian.PutUint16(s[:], v) }
func (s Little32) Get() uint32   { return binary.LittleEndian.Uint32(s[:]) }
func (s *Little32) Set(v uint32) { binary.LittleEndian.PutUint32(s[:], v) }
func (s Little64) Get() uint64   { return binary.LittleEndian.Uint64(s[:]) }
func (s *Little64) Set(v uint64) { binary.LittleEndian.PutUint64(s[:], v) }

func (s Big16) Get() uint16   { return binary.BigEndian.Uint16(s[:]) }
func (s *Big16) Set(v uint16) { binary.BigEndian.PutUint16(s[:], v) }
func (s Big32) Get() uint32   { return binary.BigEndian.Uint32(s[:]) }
func (s *Big32) Set(v uint32) { binary.BigEndian.PutUint32(s[:], v) }
func (s Big64) Get() uint64   { return binary.BigEndian.Uint64(s[:]) }
func (s *Big64) Set(v uint64) { binary.BigEndian.PutUint64(s[:], v) }

// Little64s 把字节切片按 8 字节一组视为 []Little64，不拷贝
// 末尾不足 8 字节的部分不包含在结果中
func Little64s(b []byte) []Little64 {
	n := len(b) / 8
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*Little64)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// Little64Bytes 是 Little64s 的逆操作
func Little64Bytes(w []Little64) []byte {
	if len(w) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(w))), len(w)*8)
}

// LoadLittle64 reads up to 8 bytes of b as a little-endian word, treating
// missing high bytes as zero.
func LoadLittle64(b []byte) uint64 {
	if len(b) >= 8 {
		return binary.LittleEndian.Uint64(b)
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
