package roaring_bitmap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_interface"
	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_scanner"
	"github.com/hust-tianbo/go_bitmap/cache/bitmap/packed_bitmap"
)

func TestRoaringBitMapBasic(t *testing.T) {
	m := NewRoaringBitMap(100)
	m.SetRange(10, 20)
	m.Set(90)
	assert.Equal(t, uint64(21), m.Cardinality())
	assert.True(t, m.Get(29))
	assert.False(t, m.Get(30))

	m.ClearRange(10, 10)
	m.Clear(90)
	assert.Equal(t, uint64(10), m.Cardinality())

	m.Resize(25)
	assert.Equal(t, uint64(25), m.Count())
	assert.Equal(t, uint64(5), m.Cardinality())

	m.Reset()
	assert.True(t, m.Roaring().IsEmpty())
}

func TestFromScannerRoundTrip(t *testing.T) {
	p := packed_bitmap.New(1 << 12)
	p.SetRange(0, 3)
	p.SetRange(63, 2)
	p.SetRange(1000, 2000)
	p.Set(4095)

	m := FromScanner(bitmap_scanner.FromBitmap(p, true))
	assert.Equal(t, p.Cardinality(), m.Cardinality())
	assert.True(t, bitmap_interface.Equal(p, m))
	assert.True(t, p.Equal(m.Pack()))

	want := []bitmap_scanner.Range{
		{Start: 0, Length: 3},
		{Start: 63, Length: 2},
		{Start: 1000, Length: 2000},
		{Start: 4095, Length: 1},
	}
	assert.Equal(t, want, m.Ranges())
	assert.True(t, bitmap_interface.Equal(m, FromRanges(want, 1<<12)))
}

func TestRoaringAgreesWithPacked(t *testing.T) {
	rnd := rand.New(rand.NewSource(23))
	const n = 2000

	r := NewRoaringBitMap(n)
	p := packed_bitmap.New(n)
	impls := []bitmap_interface.Bitmap{r, p}

	for op := 0; op < 300; op++ {
		start := uint64(rnd.Intn(n))
		length := uint64(rnd.Intn(n - int(start) + 1))
		set := rnd.Intn(2) == 0
		for _, b := range impls {
			if set {
				b.SetRange(start, length)
			} else {
				b.ClearRange(start, length)
			}
		}
	}
	require.Equal(t, p.Cardinality(), r.Cardinality())
	assert.Equal(t, bitmap_scanner.FromBitmap(p, true).Collect(), r.Ranges())
}
