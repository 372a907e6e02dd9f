package oblas

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func packed(dense ...byte) *CRSRow {
	r := &CRSRow{}
	r.Pack(dense)
	return r
}

func unpacked(r *CRSRow, width int) []byte {
	dense := make([]byte, width)
	r.Unpack(dense)
	return dense
}

func requireSorted(t *testing.T, r *CRSRow) {
	t.Helper()
	idxs := r.Indices()
	for i := 1; i < len(idxs); i++ {
		require.Less(t, idxs[i-1], idxs[i], "indexes not strictly ascending: %v", idxs)
	}
	for i, v := range r.Values() {
		require.NotZero(t, v, "zero value stored at position %d", i)
	}
	require.LessOrEqual(t, r.Len(), r.Cap())
}

func TestPackScenario(t *testing.T) {
	r := packed(5, 0, 7, 0)
	require.Equal(t, 2, r.Len())
	require.Equal(t, []uint16{0, 2}, r.Indices())
	require.Equal(t, []byte{5, 7}, r.Values())
	require.Equal(t, []byte{5, 0, 7, 0}, unpacked(r, 4))
	require.Equal(t, "[0:5, 2:7]", r.String())
}

func TestPackUnpackRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var r CRSRow
	for iter := 0; iter < 200; iter++ {
		width := rng.Intn(300)
		dense := make([]byte, width)
		for i := range dense {
			if rng.Intn(4) == 0 {
				dense[i] = byte(rng.Intn(256))
			}
		}
		nz := r.Pack(dense)
		require.Equal(t, nz, r.Len())
		requireSorted(t, &r)
		require.Equal(t, dense, unpacked(&r, width))
	}
}

func TestUnpackKeepsOtherColumns(t *testing.T) {
	r := packed(0, 3, 0)
	dense := []byte{9, 9, 9}
	require.Equal(t, 1, r.Unpack(dense))
	require.Equal(t, []byte{9, 3, 9}, dense)
}

func TestFind(t *testing.T) {
	idxs := []uint16{1, 4, 6, 9, 200, 201}
	for pos, x := range idxs {
		require.Equal(t, pos, Find(idxs, 0, len(idxs)-1, x))
		require.Equal(t, pos, FindLinear(idxs, 0, len(idxs)-1, x))
	}
	for _, x := range []uint16{0, 2, 5, 10, 202, 65535} {
		require.Equal(t, NotFound, Find(idxs, 0, len(idxs)-1, x))
		require.Equal(t, NotFound, FindLinear(idxs, 0, len(idxs)-1, x))
	}
	// Sub ranges.
	require.Equal(t, NotFound, Find(idxs, 2, 5, 4))
	require.Equal(t, 3, Find(idxs, 2, 5, 9))
	require.Equal(t, NotFound, Find(idxs, 0, -1, 1))

	// Linear search does not need sorted input.
	require.Equal(t, 2, FindLinear([]uint16{7, 3, 5}, 0, 2, 5))

	var empty CRSRow
	require.Equal(t, NotFound, empty.Find(0))
	require.Equal(t, NotFound, empty.Find(-1))
	require.Equal(t, byte(0), empty.At(3))
}

func TestResize(t *testing.T) {
	var r CRSRow
	require.Equal(t, 0, r.Cap())
	require.Equal(t, 3, r.Resize(3))
	require.Equal(t, Align, r.Cap())
	copy(r.idxs, []uint16{1, 2, 3})
	copy(r.vals, []byte{4, 5, 6})

	// Growing past the capacity keeps the entries.
	r.Resize(Align + 1)
	require.Equal(t, 2*Align, r.Cap())
	require.Equal(t, []uint16{1, 2, 3}, r.Indices()[:3])
	require.Equal(t, []byte{4, 5, 6}, r.Values()[:3])
	for _, v := range r.Values()[3:] {
		require.Zero(t, v)
	}

	// Capacity never shrinks.
	r.Resize(1)
	require.Equal(t, 2*Align, r.Cap())
	r.Resize(4)
	require.Equal(t, 2*Align, r.Cap())
	require.Equal(t, []byte{4, 0, 0, 0}, r.Values())

	require.Panics(t, func() { r.Resize(-1) })
}

func TestCRSRowCopyDestroy(t *testing.T) {
	src := packed(0, 1, 0, 2, 3)
	var dst CRSRow
	dst.CopyFrom(src)
	require.Equal(t, src.Indices(), dst.Indices())
	require.Equal(t, src.Values(), dst.Values())

	dst.Set(1, 9)
	require.Equal(t, byte(1), src.At(1), "copy aliases source")

	dst.CopyFrom(packed(4))
	require.Equal(t, "[0:4]", dst.String())

	dst.Destroy()
	require.Equal(t, 0, dst.Len())
	require.Equal(t, 0, dst.Cap())
	dst.Destroy()
	dst.Pack([]byte{0, 8})
	require.Equal(t, "[1:8]", dst.String())
}

func TestSet(t *testing.T) {
	var r CRSRow
	for _, col := range []int{10, 3, 7, 0, 12, 5} {
		r.Set(col, byte(col+1))
		requireSorted(t, &r)
	}
	require.Equal(t, []uint16{0, 3, 5, 7, 10, 12}, r.Indices())
	r.Set(7, 100)
	require.Equal(t, byte(100), r.At(7))
	r.Set(3, 0)
	requireSorted(t, &r)
	require.Equal(t, []uint16{0, 5, 7, 10, 12}, r.Indices())
	r.Set(4, 0)
	require.Equal(t, 5, r.Len())
}

func TestSwapCol(t *testing.T) {
	t.Run("neither", func(t *testing.T) {
		r := packed(0, 1, 0, 2)
		r.SwapCol(0, 2)
		require.Equal(t, []byte{0, 1, 0, 2}, unpacked(r, 4))
	})
	t.Run("both", func(t *testing.T) {
		r := packed(0, 1, 0, 2)
		r.SwapCol(1, 3)
		require.Equal(t, []byte{0, 2, 0, 1}, unpacked(r, 4))
		requireSorted(t, r)
	})
	t.Run("same", func(t *testing.T) {
		r := packed(0, 1, 0, 2)
		r.SwapCol(1, 1)
		require.Equal(t, []byte{0, 1, 0, 2}, unpacked(r, 4))
	})
	// The entry is moved to its sorted position, not appended.
	t.Run("first-present", func(t *testing.T) {
		r := packed(6, 1, 0, 2, 0)
		r.SwapCol(0, 4)
		require.Equal(t, []byte{0, 1, 0, 2, 6}, unpacked(r, 5))
		require.Equal(t, []uint16{1, 3, 4}, r.Indices())
		requireSorted(t, r)
	})
	t.Run("second-present", func(t *testing.T) {
		r := packed(0, 1, 0, 2, 6)
		r.SwapCol(2, 4)
		require.Equal(t, []byte{0, 1, 6, 2, 0}, unpacked(r, 5))
		require.Equal(t, []uint16{1, 2, 3}, r.Indices())
		requireSorted(t, r)
	})
	t.Run("random", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		dense := make([]byte, 64)
		for i := range dense {
			if rng.Intn(3) == 0 {
				dense[i] = byte(1 + rng.Intn(255))
			}
		}
		r := packed(dense...)
		for iter := 0; iter < 1000; iter++ {
			i, j := rng.Intn(64), rng.Intn(64)
			r.SwapCol(i, j)
			dense[i], dense[j] = dense[j], dense[i]
			requireSorted(t, r)
			require.Equal(t, dense, unpacked(r, 64))
			// Binary search keeps working on the result.
			for pos, idx := range r.Indices() {
				require.Equal(t, pos, r.Find(int(idx)))
			}
		}
	})
}

func TestAddSparseScenario(t *testing.T) {
	k := New()
	a := packed(1, 0, 1, 0)
	b := packed(1, 1, 0, 0)
	k.AddSparse(a, b, 4)
	require.Equal(t, []byte{0, 1, 1, 0}, unpacked(a, 4))
	require.Equal(t, []uint16{1, 2}, a.Indices())
	// b is not modified.
	require.Equal(t, []byte{1, 1, 0, 0}, unpacked(b, 4))
}

func TestAxpySparse(t *testing.T) {
	for name, k := range testKernels() {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			for iter := 0; iter < 300; iter++ {
				width := 1 + rng.Intn(200)
				ad, bd := make([]byte, width), make([]byte, width)
				for i := 0; i < width; i++ {
					if rng.Intn(3) == 0 {
						ad[i] = byte(rng.Intn(256))
					}
					if rng.Intn(3) == 0 {
						bd[i] = byte(rng.Intn(256))
					}
				}
				u := byte(rng.Intn(256))
				a, b := packed(ad...), packed(bd...)
				k.AxpySparse(a, b, u, width)
				for i := range ad {
					ad[i] ^= refMultiply(u, bd[i])
				}
				requireSorted(t, a)
				require.Equal(t, ad, unpacked(a, width))
			}
		})
	}
}

func TestAxpySparseIdentities(t *testing.T) {
	k := New()
	a := packed(3, 0, 4, 5)
	b := packed(0, 7, 4, 1)
	k.AxpySparse(a, b, 0, 4)
	require.Equal(t, []byte{3, 0, 4, 5}, unpacked(a, 4))

	c := &CRSRow{}
	c.CopyFrom(a)
	k.AxpySparse(a, b, 1, 4)
	k.AddSparse(c, b, 4)
	require.Equal(t, unpacked(c, 4), unpacked(a, 4))
	require.Equal(t, []byte{3, 7, 0, 4}, unpacked(a, 4))
}

func TestAxpySparseWideScratch(t *testing.T) {
	// Wider than the initial scratch rows.
	k := New(WithScratchSize(8))
	width := 5000
	a, b := &CRSRow{}, &CRSRow{}
	a.Set(4999, 1)
	b.Set(0, 2)
	b.Set(4999, 1)
	k.AxpySparse(a, b, 3, width)
	require.Equal(t, []uint16{0, 4999}, a.Indices())
	require.Equal(t, []byte{refMultiply(3, 2), 1 ^ refMultiply(3, 1)}, a.Values())
}

func TestCRSRowPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, packed(5, 0, 7).Print(&buf, 4))
	require.Equal(t, "|  5,   0,   7,   0  |\n", buf.String())
}

func BenchmarkAxpySparse(b *testing.B) {
	k := New()
	rng := rand.New(rand.NewSource(0))
	const width = 1024
	ad, bd := make([]byte, width), make([]byte, width)
	for i := 0; i < width; i += 1 + rng.Intn(16) {
		ad[i] = byte(1 + rng.Intn(255))
		bd[(i*7)%width] = byte(1 + rng.Intn(255))
	}
	x, y := packed(ad...), packed(bd...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.AxpySparse(x, y, byte(i|2), width)
	}
}
