// Package bitmap_scanner 在不逐位读取的情况下扫描位图中连续置位（或未置位）的区间
//
// 被扫描的数据按 64 位小端字解释，字内从最低位开始编号，与 packed_bitmap 的布局一致。
// Scanner 只借用数据，不持有也不修改；扫描期间调用方需保证数据不被修改。
package bitmap_scanner

import (
	"iter"

	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_interface"
	"github.com/hust-tianbo/go_bitmap/endian"
)

const storageBits = 64

// Range 一段连续区间 [Start, Start+Length)
type Range struct {
	Start  uint64
	Length uint64
}

// End 返回区间的结束位置（不包含）
func (r Range) End() uint64 { return r.Start + r.Length }

// Run 是一段值相同的最长连续区间
type Run struct {
	Range
	Set bool
}

// wordSource 按字读取被借用的数据，超出数据范围的字读出为0
type wordSource interface {
	word(i uint64) uint64
	words() uint64
}

type byteSource struct {
	full []endian.Little64
	tail []byte // 末尾不足一个字的字节
}

func (s *byteSource) word(i uint64) uint64 {
	if i < uint64(len(s.full)) {
		return s.full[i].Get()
	}
	if i == uint64(len(s.full)) {
		return endian.LoadLittle64(s.tail)
	}
	return 0
}

func (s *byteSource) words() uint64 {
	n := uint64(len(s.full))
	if len(s.tail) > 0 {
		n++
	}
	return n
}

type nativeSource []uint64

func (s nativeSource) word(i uint64) uint64 {
	if i < uint64(len(s)) {
		return s[i]
	}
	return 0
}

func (s nativeSource) words() uint64 { return uint64(len(s)) }

// Scanner scans borrowed bitmap data for ranges of set or unset bits.
type Scanner struct {
	src     wordSource
	scanSet bool
	count   uint64
}

// New 基于原始小端数据创建扫描器
//
// count 为需要扫描的位数；scanSet 为 true 时扫描置位区间，否则扫描未置位区间。
// data 不必是 8 字节的整数倍，不足 count 的部分按0处理。
func New(data []byte, count uint64, scanSet bool) *Scanner {
	need := (count + 7) / 8
	if uint64(len(data)) > need {
		data = data[:need]
	}
	full := endian.Little64s(data)
	return &Scanner{
		src: &byteSource{
			full: full,
			tail: data[len(full)*8:],
		},
		scanSet: scanSet,
		count:   count,
	}
}

// FromBitmap 借用bitmap的存储创建扫描器
func FromBitmap(v bitmap_interface.ByteView, scanSet bool) *Scanner {
	return New(v.Bytes(), v.Count(), scanSet)
}

// FromWords 基于本机字序的 uint64 数组创建扫描器，第 i 位位于 words[i/64] 的第 i%64 位
func FromWords(words []uint64, count uint64, scanSet bool) *Scanner {
	return &Scanner{
		src:     nativeSource(words),
		scanSet: scanSet,
		count:   count,
	}
}

// FromWordView 借用 WordView 的存储创建扫描器
func FromWordView(v bitmap_interface.WordView, scanSet bool) *Scanner {
	return FromWords(v.Words(), v.Count(), scanSet)
}

// IsValid reports whether the scanner has any data to scan.
func (s *Scanner) IsValid() bool {
	return s.count > 0 && s.src.words() > 0
}

// Count 需要扫描的位数
func (s *Scanner) Count() uint64 { return s.count }

// ScanSet reports whether the scanner looks for ranges of set bits.
func (s *Scanner) ScanSet() bool { return s.scanSet }

// Begin returns a new iterator positioned before the first range. Each call
// starts an independent scan.
func (s *Scanner) Begin() *Iterator {
	return &Iterator{s: s, findSet: s.scanSet}
}

// Ranges 返回所有目标区间（scanSet 为 true 时为置位区间）的惰性序列
// 可以多次遍历，每次从头开始
func (s *Scanner) Ranges() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		it := s.Begin()
		for r, ok := it.Next(); ok; r, ok = it.Next() {
			if !yield(r) {
				return
			}
		}
	}
}

// Runs returns every maximal run of equal bits in [0, Count()) in order,
// alternating between set and unset.
func (s *Scanner) Runs() iter.Seq[Run] {
	return func(yield func(Run) bool) {
		it := &Iterator{s: s, findSet: true}
		var pos uint64
		for r, ok := it.Next(); ok; r, ok = it.Next() {
			if r.Start > pos {
				if !yield(Run{Range: Range{Start: pos, Length: r.Start - pos}}) {
					return
				}
			}
			if !yield(Run{Range: r, Set: true}) {
				return
			}
			pos = r.End()
		}
		if pos < s.count {
			yield(Run{Range: Range{Start: pos, Length: s.count - pos}})
		}
	}
}

// Collect 返回所有目标区间
func (s *Scanner) Collect() []Range {
	var out []Range
	for r := range s.Ranges() {
		out = append(out, r)
	}
	return out
}
