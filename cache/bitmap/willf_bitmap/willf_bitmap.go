package willf_bitmap

import (
	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_interface"

	wf "github.com/bits-and-blooms/bitset"
)

const defaultLength = 64

var _ bitmap_interface.Bitmap = (*WillfBitMap)(nil)
var _ bitmap_interface.WordView = (*WillfBitMap)(nil)

// WillfBitMap 基于 bits-and-blooms/bitset 的bitmap实现
//
// bitset 的字是本机字序，扫描时使用 bitmap_scanner.FromWordView
type WillfBitMap struct {
	b *wf.BitSet
}

func NewWillfBitMap() *WillfBitMap {
	return NewWillfBitMapWithLength(defaultLength)
}

func NewWillfBitMapWithLength(n uint64) *WillfBitMap {
	return &WillfBitMap{
		b: wf.New(uint(n)),
	}
}

func (m *WillfBitMap) Set(i uint64) {
	m.b.Set(uint(i))
}

func (m *WillfBitMap) Clear(i uint64) {
	m.b.Clear(uint(i))
}

func (m *WillfBitMap) Get(i uint64) bool {
	return m.b.Test(uint(i))
}

func (m *WillfBitMap) SetRange(start, n uint64) {
	for i := start; i < start+n; i++ {
		m.b.Set(uint(i))
	}
}

func (m *WillfBitMap) ClearRange(start, n uint64) {
	for i := start; i < start+n; i++ {
		m.b.Clear(uint(i))
	}
}

func (m *WillfBitMap) Count() uint64 {
	return uint64(m.b.Len())
}

// Resize 调整长度；bitset 只能通过拷贝缩小，新增的位为0
func (m *WillfBitMap) Resize(n uint64) {
	nb := wf.New(uint(n))
	for i, ok := m.b.NextSet(0); ok && i < uint(n); i, ok = m.b.NextSet(i + 1) {
		nb.Set(i)
	}
	m.b = nb
}

func (m *WillfBitMap) Reset() {
	m.b.ClearAll()
}

func (m *WillfBitMap) Clone() *WillfBitMap {
	return &WillfBitMap{b: m.b.Clone()}
}

func (m *WillfBitMap) Equal(slave bitmap_interface.Bitmap) bool {
	if other, ok := slave.(*WillfBitMap); ok {
		return m.b.Equal(other.b)
	}
	return bitmap_interface.Equal(m, slave)
}

func (m *WillfBitMap) Cardinality() uint64 {
	return uint64(m.b.Count())
}

// Words 返回 bitset 内部的字数组，不拷贝
func (m *WillfBitMap) Words() []uint64 {
	return m.b.Words()
}
