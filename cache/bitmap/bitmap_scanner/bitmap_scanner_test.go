package bitmap_scanner

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hust-tianbo/go_bitmap/cache/bitmap/packed_bitmap"
)

// naiveRuns 逐位读取原始字节，得到所有最长同值区间
func naiveRuns(data []byte, count uint64) []Run {
	get := func(i uint64) bool { return data[i/8]&(1<<(i%8)) != 0 }

	var runs []Run
	for i := uint64(0); i < count; {
		v := get(i)
		j := i + 1
		for j < count && get(j) == v {
			j++
		}
		runs = append(runs, Run{Range: Range{Start: i, Length: j - i}, Set: v})
		i = j
	}
	return runs
}

func filterRuns(runs []Run, set bool) []Range {
	var out []Range
	for _, r := range runs {
		if r.Set == set {
			out = append(out, r.Range)
		}
	}
	return out
}

func randomBitmap(rnd *rand.Rand, n uint64) *packed_bitmap.Bitmap {
	b := packed_bitmap.New(n)
	if n == 0 {
		return b
	}
	// 混合长短区间，覆盖整字跳过的路径
	for pos := uint64(0); pos < n; {
		var length uint64
		switch rnd.Intn(3) {
		case 0:
			length = uint64(rnd.Intn(4)) + 1
		case 1:
			length = uint64(rnd.Intn(70)) + 1
		default:
			length = uint64(rnd.Intn(300)) + 1
		}
		length = min(length, n-pos)
		if rnd.Intn(2) == 0 {
			b.SetRange(pos, length)
		}
		pos += length
	}
	return b
}

func TestScenarioSingleRange(t *testing.T) {
	b := packed_bitmap.New(10)
	b.SetRange(3, 4)

	got := FromBitmap(b, true).Collect()
	assert.Equal(t, []Range{{Start: 3, Length: 4}}, got)
}

func TestScenarioWordBoundary(t *testing.T) {
	b := packed_bitmap.New(128)
	b.Set(63)
	b.Set(64)

	got := FromBitmap(b, true).Collect()
	assert.Equal(t, []Range{{Start: 63, Length: 2}}, got)

	unset := FromBitmap(b, false).Collect()
	assert.Equal(t, []Range{{Start: 0, Length: 63}, {Start: 65, Length: 63}}, unset)
}

func TestScenarioEmpty(t *testing.T) {
	var b packed_bitmap.Bitmap
	sc := FromBitmap(&b, true)
	assert.False(t, sc.IsValid())
	assert.Empty(t, sc.Collect())

	_, ok := sc.Begin().Next()
	assert.False(t, ok)

	for range sc.Runs() {
		t.Fatal("empty bitmap must not produce runs")
	}
}

func TestScenarioAllSet(t *testing.T) {
	b := packed_bitmap.New(50)
	b.SetRange(0, 50)

	assert.Equal(t, []Range{{Start: 0, Length: 50}}, FromBitmap(b, true).Collect())
	assert.Empty(t, FromBitmap(b, false).Collect())
}

func TestAllUnset(t *testing.T) {
	b := packed_bitmap.New(1000)

	assert.Empty(t, FromBitmap(b, true).Collect())
	assert.Equal(t, []Range{{Start: 0, Length: 1000}}, FromBitmap(b, false).Collect())
	assert.Equal(t, []Run{{Range: Range{Start: 0, Length: 1000}}}, slices.Collect(FromBitmap(b, true).Runs()))
}

func TestRangeClampedToCount(t *testing.T) {
	// 超出 count 的填充位即使置位也不能被报告
	data := []byte{0xf0, 0xff, 0xff}
	assert.Equal(t, []Range{{Start: 4, Length: 8}}, New(data, 12, true).Collect())
	assert.Equal(t, []Range{{Start: 0, Length: 4}}, New(data, 12, false).Collect())

	// 目标位只出现在填充位中
	assert.Empty(t, New([]byte{0xf0}, 4, true).Collect())
}

func TestIteratorExhausted(t *testing.T) {
	b := packed_bitmap.New(64)
	b.Set(10)
	it := FromBitmap(b, true).Begin()

	r, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, Range{Start: 10, Length: 1}, r)

	for i := 0; i < 3; i++ {
		_, ok = it.Next()
		assert.False(t, ok)
	}
}

func TestRangesRestartable(t *testing.T) {
	b := packed_bitmap.New(300)
	b.SetRange(1, 2)
	b.SetRange(100, 150)
	sc := FromBitmap(b, true)

	first := slices.Collect(sc.Ranges())
	second := slices.Collect(sc.Ranges())
	assert.Equal(t, first, second)
	assert.Equal(t, []Range{{Start: 1, Length: 2}, {Start: 100, Length: 150}}, first)

	// 提前结束遍历不影响下一次
	for range sc.Ranges() {
		break
	}
	assert.Equal(t, first, sc.Collect())
}

func TestIndependentIterators(t *testing.T) {
	b := packed_bitmap.New(200)
	b.SetRange(10, 5)
	b.SetRange(70, 5)
	sc := FromBitmap(b, true)

	a := sc.Begin()
	c := sc.Begin()
	r1, _ := a.Next()
	r2, _ := a.Next()
	r3, _ := c.Next()
	assert.Equal(t, Range{Start: 10, Length: 5}, r1)
	assert.Equal(t, Range{Start: 70, Length: 5}, r2)
	assert.Equal(t, r1, r3)
}

func TestPartitionProperty(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	sizes := []uint64{1, 7, 63, 64, 65, 127, 128, 129, 500, 1024, 4099}

	for _, n := range sizes {
		for round := 0; round < 20; round++ {
			b := randomBitmap(rnd, n)
			runs := slices.Collect(FromBitmap(b, rnd.Intn(2) == 0).Runs())

			var pos uint64
			for i, r := range runs {
				require.Equal(t, pos, r.Start, "n=%d run %d", n, i)
				require.NotZero(t, r.Length, "n=%d run %d", n, i)
				if i > 0 {
					require.NotEqual(t, runs[i-1].Set, r.Set, "n=%d run %d", n, i)
				}
				pos = r.End()
			}
			require.Equal(t, n, pos)
		}
	}
}

func TestModeCorrectness(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	sizes := []uint64{1, 3, 64, 100, 256, 777, 2048}

	for _, n := range sizes {
		for round := 0; round < 20; round++ {
			b := randomBitmap(rnd, n)
			want := naiveRuns(b.Bytes(), n)

			assert.Equal(t, want, slices.Collect(FromBitmap(b, true).Runs()), "n=%d", n)
			assert.Equal(t, filterRuns(want, true), FromBitmap(b, true).Collect(), "n=%d set", n)
			assert.Equal(t, filterRuns(want, false), FromBitmap(b, false).Collect(), "n=%d unset", n)
		}
	}
}

func TestRawBufferOddLength(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for _, n := range []int{1, 5, 9, 13, 17, 31} {
		data := make([]byte, n)
		rnd.Read(data)
		count := uint64(n * 8)

		want := naiveRuns(data, count)
		assert.Equal(t, filterRuns(want, true), New(data, count, true).Collect(), "len=%d", n)
		assert.Equal(t, filterRuns(want, false), New(data, count, false).Collect(), "len=%d", n)

		// 与拷贝进 Bitmap 后扫描的结果一致
		b := packed_bitmap.FromBytes(data, count)
		assert.Equal(t, FromBitmap(b, true).Collect(), New(data, count, true).Collect(), "len=%d", n)
	}
}

func TestRawBufferShorterThanCount(t *testing.T) {
	// 数据不足的部分按未置位处理
	sc := New([]byte{0xff}, 20, true)
	assert.True(t, sc.IsValid())
	assert.Equal(t, []Range{{Start: 0, Length: 8}}, sc.Collect())
	assert.Equal(t, []Range{{Start: 8, Length: 12}}, New([]byte{0xff}, 20, false).Collect())
}

func TestFromWordsMatchesBitset(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	const n = 1000

	bs := bitset.New(n)
	pb := packed_bitmap.New(n)
	for i := 0; i < 300; i++ {
		idx := uint(rnd.Intn(n))
		bs.Set(idx)
		pb.Set(uint64(idx))
	}

	got := FromWords(bs.Words(), n, true).Collect()
	assert.Equal(t, FromBitmap(pb, true).Collect(), got)

	// 与 bitset 自带的 NextSet/NextClear 对照
	var want []Range
	for i, ok := bs.NextSet(0); ok && i < n; i, ok = bs.NextSet(i) {
		end, found := bs.NextClear(i)
		if !found || end > n {
			end = n
		}
		want = append(want, Range{Start: uint64(i), Length: uint64(end - i)})
		i = end
	}
	assert.Equal(t, want, got)
}

func TestIsValid(t *testing.T) {
	assert.False(t, New(nil, 0, true).IsValid())
	assert.False(t, New([]byte{1}, 0, true).IsValid())
	assert.True(t, New([]byte{1}, 1, true).IsValid())
	assert.False(t, FromWords(nil, 0, false).IsValid())
	assert.True(t, FromWords([]uint64{0}, 64, false).IsValid())
}

func TestScannerAccessors(t *testing.T) {
	sc := New(make([]byte, 8), 64, false)
	assert.Equal(t, uint64(64), sc.Count())
	assert.False(t, sc.ScanSet())
	assert.Equal(t, uint64(15), Range{Start: 5, Length: 10}.End())
}
