// Package bit 提供与位宽无关的位计数原语
//
// 所有函数对全零（或全一）输入都有定义：返回该类型的位宽，
// 与 C++20 <bit> 的 countr_zero/countl_zero 语义一致。
package bit

import (
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Width 返回无符号整数类型 T 的位宽
func Width[T constraints.Unsigned]() int {
	var x T
	return int(unsafe.Sizeof(x)) * 8
}

// CountrZero returns the number of consecutive 0 bits starting from the
// least significant bit. It returns Width[T]() for x == 0.
func CountrZero[T constraints.Unsigned](x T) int {
	w := Width[T]()
	if x == 0 {
		return w
	}
	return bits.TrailingZeros64(uint64(x))
}

// CountrOne returns the number of consecutive 1 bits starting from the
// least significant bit.
func CountrOne[T constraints.Unsigned](x T) int {
	return CountrZero(^x)
}

// CountlZero returns the number of consecutive 0 bits starting from the
// most significant bit. It returns Width[T]() for x == 0.
func CountlZero[T constraints.Unsigned](x T) int {
	return bits.LeadingZeros64(uint64(x)) - (64 - Width[T]())
}

// CountlOne returns the number of consecutive 1 bits starting from the
// most significant bit.
func CountlOne[T constraints.Unsigned](x T) int {
	return CountlZero(^x)
}

// Popcount 返回置位的个数
func Popcount[T constraints.Unsigned](x T) int {
	return bits.OnesCount64(uint64(x))
}

// BitWidth 表示 x 需要的最少位数，x == 0 时为 0
func BitWidth[T constraints.Unsigned](x T) int {
	return bits.Len64(uint64(x))
}

// HasSingleBit reports whether x is a power of two.
func HasSingleBit[T constraints.Unsigned](x T) bool {
	return x != 0 && x&(x-1) == 0
}

// BitFloor returns the largest power of two not greater than x, or 0.
func BitFloor[T constraints.Unsigned](x T) T {
	if x == 0 {
		return 0
	}
	return T(1) << (BitWidth(x) - 1)
}

// BitCeil returns the smallest power of two not less than x. The result is
// 0 when it does not fit in T.
func BitCeil[T constraints.Unsigned](x T) T {
	if x <= 1 {
		return 1
	}
	n := BitWidth(x - 1)
	if n >= Width[T]() {
		return 0
	}
	return T(1) << n
}
