// Package packed_bitmap 实现内存布局固定的位图
//
// 位存放在 64 位字中，每个字按小端字节序存储：第 i 位位于第 i/64 个字，
// 字内从最低位开始数第 i%64 位。因此 Bytes() 的内容与宿主字节序无关，
// 可以直接写盘或交给 bitmap_scanner 扫描。
//
// Bitmap 不是并发安全的；下标不做检查，越界访问由运行时 panic。
package packed_bitmap

import (
	"math"

	"github.com/duke-git/lancet/v2/mathutil"

	"github.com/hust-tianbo/go_bitmap/bit"
	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_interface"
	"github.com/hust-tianbo/go_bitmap/endian"
)

// WordBits 每个存储字的位数
const WordBits = 64

var _ bitmap_interface.Bitmap = (*Bitmap)(nil)
var _ bitmap_interface.ByteView = (*Bitmap)(nil)

// storageSize 存放 n 位需要的字数
func storageSize(n uint64) uint64 { return (n + WordBits - 1) / WordBits }

// si 第 n 位所在的字
func si(n uint64) uint64 { return n / WordBits }

// bi 第 n 位在字内的位置
func bi(n uint64) uint64 { return n % WordBits }

// bm 第 n 位在字内的掩码
func bm(n uint64) uint64 { return 1 << bi(n) }

// Bitmap is a sequence of bits with a well defined memory layout. The zero
// value is an empty bitmap ready to use.
type Bitmap struct {
	storage []endian.Little64
	count   uint64
}

// New 创建含有 n 个未置位元素的bitmap
func New(n uint64) *Bitmap {
	return &Bitmap{
		storage: make([]endian.Little64, storageSize(n)),
		count:   n,
	}
}

// Get reports whether bit n is set.
func (b *Bitmap) Get(n uint64) bool {
	return b.storage[si(n)].Get()&bm(n) != 0
}

// Set sets bit n.
func (b *Bitmap) Set(n uint64) {
	w := &b.storage[si(n)]
	w.Set(w.Get() | bm(n))
}

// Clear clears bit n.
func (b *Bitmap) Clear(n uint64) {
	w := &b.storage[si(n)]
	w.Set(w.Get() &^ bm(n))
}

// SetRange sets the n bits starting at start. Word aligned spans of at
// least one full word are written a word at a time.
func (b *Bitmap) SetRange(start, n uint64) {
	b.fill(start, n, true)
}

// ClearRange clears the n bits starting at start.
func (b *Bitmap) ClearRange(start, n uint64) {
	b.fill(start, n, false)
}

func (b *Bitmap) fill(start, n uint64, set bool) {
	var full uint64
	if set {
		full = math.MaxUint64
	}
	for n > 0 {
		if bi(start) == 0 && n >= WordBits {
			// 整个字都在范围内，直接整体赋值
			b.storage[si(start)].Set(full)
			start += WordBits
			n -= WordBits
			continue
		}

		if set {
			b.Set(start)
		} else {
			b.Clear(start)
		}
		start++
		n--
	}
}

// Count returns the number of bits in the bitmap.
func (b *Bitmap) Count() uint64 { return b.count }

// Resize 调整位数；保留 [0, min(旧长度, n)) 的内容，新增的位为0
func (b *Bitmap) Resize(n uint64) {
	keep := mathutil.Min(b.count, n)
	size := storageSize(n)

	if size <= uint64(cap(b.storage)) {
		old := uint64(len(b.storage))
		b.storage = b.storage[:size]
		if size > old {
			// 复用的底层数组里可能残留缩小前的数据
			clear(b.storage[old:])
		}
	} else {
		storage := make([]endian.Little64, size)
		copy(storage, b.storage)
		b.storage = storage
	}
	b.count = n

	// 最后一个保留字中超过 keep 的填充位清零，保证新增的位读出为0
	if r := bi(keep); r != 0 {
		w := &b.storage[si(keep)]
		w.Set(w.Get() & (bm(keep) - 1))
	}
}

// Reset 清空所有位，长度不变
func (b *Bitmap) Reset() {
	clear(b.storage)
}

// Cardinality returns the number of set bits.
func (b *Bitmap) Cardinality() uint64 {
	var c uint64
	for i := range b.storage {
		c += uint64(bit.Popcount(b.storage[i].Get()))
	}
	return c
}

// Clone 深拷贝
func (b *Bitmap) Clone() *Bitmap {
	storage := make([]endian.Little64, len(b.storage))
	copy(storage, b.storage)
	return &Bitmap{storage: storage, count: b.count}
}

// Equal 比较长度与所有有效位
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.count != other.count {
		return false
	}
	for i := range b.storage {
		if b.storage[i] != other.storage[i] {
			return false
		}
	}
	return true
}

// Bytes returns the storage as little-endian bytes. The slice aliases the
// bitmap and is only valid until the next Resize; callers must not modify it.
func (b *Bitmap) Bytes() []byte {
	return endian.Little64Bytes(b.storage)
}

// Words returns the storage words. Same aliasing rules as Bytes.
func (b *Bitmap) Words() []endian.Little64 {
	return b.storage
}

// FromBytes 以小端字节序数据构造 count 位的bitmap，数据会被拷贝
// data 不足的部分补0，超出 count 的位被清除
func FromBytes(data []byte, count uint64) *Bitmap {
	b := New(count)
	copy(endian.Little64Bytes(b.storage), data)
	if r := bi(count); r != 0 {
		w := &b.storage[si(count)]
		w.Set(w.Get() & (bm(count) - 1))
	}
	return b
}
