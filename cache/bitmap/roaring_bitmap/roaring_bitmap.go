// Package roaring_bitmap 基于 RoaringBitmap 的压缩bitmap实现
//
// 适合稀疏或长区间的数据；与定长布局之间通过区间扫描互相转换。
package roaring_bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_interface"
	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_scanner"
	"github.com/hust-tianbo/go_bitmap/cache/bitmap/packed_bitmap"
)

var _ bitmap_interface.Bitmap = (*RoaringBitMap)(nil)

// RoaringBitMap 长度固定为 count 位，位下标需小于 2^32
type RoaringBitMap struct {
	rb    *roaring.Bitmap
	count uint64
}

func NewRoaringBitMap(n uint64) *RoaringBitMap {
	return &RoaringBitMap{rb: roaring.New(), count: n}
}

// FromRanges 用区间序列构造，通常来自 bitmap_scanner 的扫描结果
func FromRanges(ranges []bitmap_scanner.Range, n uint64) *RoaringBitMap {
	m := NewRoaringBitMap(n)
	for _, r := range ranges {
		m.rb.AddRange(r.Start, r.End())
	}
	return m
}

// FromScanner 把扫描器报告的置位区间导入 roaring，扫描器须为置位模式
func FromScanner(sc *bitmap_scanner.Scanner) *RoaringBitMap {
	m := NewRoaringBitMap(sc.Count())
	for r := range sc.Ranges() {
		m.rb.AddRange(r.Start, r.End())
	}
	return m
}

func (m *RoaringBitMap) Set(i uint64) {
	m.rb.Add(uint32(i))
}

func (m *RoaringBitMap) Clear(i uint64) {
	m.rb.Remove(uint32(i))
}

func (m *RoaringBitMap) Get(i uint64) bool {
	return m.rb.Contains(uint32(i))
}

func (m *RoaringBitMap) SetRange(start, n uint64) {
	m.rb.AddRange(start, start+n)
}

func (m *RoaringBitMap) ClearRange(start, n uint64) {
	m.rb.RemoveRange(start, start+n)
}

func (m *RoaringBitMap) Count() uint64 {
	return m.count
}

func (m *RoaringBitMap) Resize(n uint64) {
	if n < m.count {
		m.rb.RemoveRange(n, m.count)
	}
	m.count = n
}

func (m *RoaringBitMap) Reset() {
	m.rb.Clear()
}

func (m *RoaringBitMap) Cardinality() uint64 {
	return m.rb.GetCardinality()
}

// Roaring 返回内部的 roaring.Bitmap
func (m *RoaringBitMap) Roaring() *roaring.Bitmap {
	return m.rb
}

// Pack 转换为定长布局
func (m *RoaringBitMap) Pack() *packed_bitmap.Bitmap {
	b := packed_bitmap.New(m.count)
	it := m.rb.Iterator()
	for it.HasNext() {
		i := uint64(it.Next())
		if i >= m.count {
			break
		}
		b.Set(i)
	}
	return b
}

// Ranges 返回置位区间，经 Pack 后扫描得到
func (m *RoaringBitMap) Ranges() []bitmap_scanner.Range {
	return bitmap_scanner.FromBitmap(m.Pack(), true).Collect()
}
