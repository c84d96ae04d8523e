package bitmap_scanner

import "github.com/hust-tianbo/go_bitmap/bit"

// Iterator is a forward-only cursor over the ranges of a Scanner. It keeps
// the current word cached and only ever searches for 1 bits: when looking
// for unset bits the cached word is inverted.
type Iterator struct {
	s       *Scanner
	next    uint64 // 下一个待检查的位
	findSet bool   // 当前查找的位值
	cache   uint64 // next 所在字（查找未置位时为取反后的值）
}

// Next returns the next range, or false once the scan is exhausted.
// Further calls keep returning false.
func (it *Iterator) Next() (Range, bool) {
	// 区间起点：下一个目标值的位
	s, ok := it.scan()
	if !ok {
		it.next = it.s.count
		return Range{}, false
	}

	// 区间终点：其后第一个相反值的位
	it.toggleMode()
	e, ok := it.scan()
	it.toggleMode()

	// 没有相反值的位，区间延伸到末尾
	if !ok {
		e = it.s.count
	}
	return Range{Start: s, Length: e - s}, true
}

func (it *Iterator) cacheNext() {
	it.cache = it.s.src.word(it.next / storageBits)
	if !it.findSet {
		it.cache = ^it.cache
	}
}

func (it *Iterator) toggleMode() {
	it.findSet = !it.findSet
	it.cache = ^it.cache
}

// scan 找到 next 之后第一个等于 findSet 的位，并把 next 移到它后面
func (it *Iterator) scan() (uint64, bool) {
	for it.next < it.s.count {
		i := it.next % storageBits

		// 进入新字时才读取
		if i == 0 {
			it.cacheNext()

			// 整个字都没有目标位，跳过
			if it.cache == 0 {
				it.next += storageBits
				continue
			}
		}

		// 屏蔽已经检查过的低位
		c := bit.CountrZero((it.cache >> i) << i)
		if c == storageBits {
			it.next += storageBits - i
			continue
		}

		it.next += uint64(c) + 1 - i
		if pos := it.next - 1; pos < it.s.count {
			return pos, true
		}
		return 0, false
	}
	return 0, false
}
