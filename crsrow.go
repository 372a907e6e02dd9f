/**
 * Compressed sparse rows of octets.
 *
 * Copyright 2015, Klaus Post
 */

package oblas

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
)

// NotFound is returned by searches when the column is not present.
const NotFound = -1

// CRSRow is a sparse row of octets.
//
// Non-zero entries are stored as two parallel arrays: column indexes in
// strictly ascending order and their values. Capacity grows in multiples
// of Align and never shrinks until Destroy is called.
//
// The zero value is an empty row.
type CRSRow struct {
	idxs []uint16
	vals []byte
	nz   int
}

// Find returns the position of x in the sorted range idxs[l:r+1],
// or NotFound.
func Find(idxs []uint16, l, r int, x uint16) int {
	for l <= r {
		mid := int(uint(l+r) >> 1)
		switch v := idxs[mid]; {
		case v == x:
			return mid
		case v < x:
			l = mid + 1
		default:
			r = mid - 1
		}
	}
	return NotFound
}

// FindLinear returns the position of x in idxs[l:r+1], or NotFound.
// The range does not have to be sorted.
func FindLinear(idxs []uint16, l, r int, x uint16) int {
	for i := l; i <= r; i++ {
		if idxs[i] == x {
			return i
		}
	}
	return NotFound
}

// Len returns the number of stored entries.
func (a *CRSRow) Len() int { return a.nz }

// Cap returns the number of entries that fit without reallocating.
func (a *CRSRow) Cap() int { return len(a.vals) }

// Indices returns the column indexes of the stored entries.
// The slice aliases the row.
func (a *CRSRow) Indices() []uint16 { return a.idxs[:a.nz] }

// Values returns the values of the stored entries.
// The slice aliases the row.
func (a *CRSRow) Values() []byte { return a.vals[:a.nz] }

// Find returns the position of column col, or NotFound.
func (a *CRSRow) Find(col int) int {
	if col < 0 || col > MaxDim {
		return NotFound
	}
	return Find(a.idxs, 0, a.nz-1, uint16(col))
}

// At returns the value at column col.
func (a *CRSRow) At(col int) byte {
	pos := a.Find(col)
	if pos == NotFound {
		return 0
	}
	return a.vals[pos]
}

// Set sets the value at column col.
// Setting 0 removes the entry.
func (a *CRSRow) Set(col int, v byte) {
	if col < 0 || col > MaxDim {
		panic(ErrInvalidColSize)
	}
	pos := a.Find(col)
	switch {
	case pos != NotFound && v != 0:
		a.vals[pos] = v
	case pos != NotFound:
		a.remove(pos)
	case v != 0:
		a.insert(col, v)
	}
}

// Resize sets the number of entries to nz.
//
// When nz exceeds the capacity, the arrays are reallocated with the
// capacity rounded up to a multiple of Align and the existing entries
// are kept. Entries exposed by growing are zero.
func (a *CRSRow) Resize(nz int) int {
	if nz < 0 || nz > MaxDim+1 {
		panic(ErrInvalidColSize)
	}
	if a.Cap() < nz {
		capacity := AlignedCols(nz)
		idxs := mustAllocIdxs(capacity)
		vals := mustAlloc(capacity)
		copy(idxs, a.idxs[:a.nz])
		copy(vals, a.vals[:a.nz])
		a.idxs, a.vals = idxs, vals
	} else if nz > a.nz {
		for i := a.nz; i < nz; i++ {
			a.idxs[i] = 0
			a.vals[i] = 0
		}
	}
	a.nz = nz
	return nz
}

// CopyFrom makes a a deep copy of src.
// The arrays of a are reused when they are large enough.
func (a *CRSRow) CopyFrom(src *CRSRow) {
	if a.Cap() < src.nz {
		a.idxs = mustAllocIdxs(src.Cap())
		a.vals = mustAlloc(src.Cap())
	}
	copy(a.idxs, src.idxs[:src.nz])
	copy(a.vals, src.vals[:src.nz])
	a.nz = src.nz
}

// Destroy releases both arrays. It is safe to call more than once.
func (a *CRSRow) Destroy() {
	a.idxs = nil
	a.vals = nil
	a.nz = 0
}

// Unpack scatters the entries of a into dense, which must be wider than
// the largest stored column. Other octets of dense are not modified.
// Returns the number of entries written.
func (a *CRSRow) Unpack(dense []byte) int {
	for i, idx := range a.idxs[:a.nz] {
		dense[idx] = a.vals[i]
	}
	return a.nz
}

// Pack replaces the content of a with the non-zero octets of dense.
// Returns the number of entries.
func (a *CRSRow) Pack(dense []byte) int {
	if len(dense) > MaxDim+1 {
		panic(ErrInvalidColSize)
	}
	nz := 0
	for _, v := range dense {
		if v != 0 {
			nz++
		}
	}
	a.Resize(nz)

	at := 0
	for idx, v := range dense {
		if v != 0 {
			a.idxs[at] = uint16(idx)
			a.vals[at] = v
			at++
		}
	}
	return nz
}

// SwapCol exchanges the values of columns i and j.
//
// If only one of the columns is present its entry moves to the other
// column, keeping the indexes sorted.
func (a *CRSRow) SwapCol(i, j int) {
	if i == j {
		return
	}
	ix, jx := a.Find(i), a.Find(j)
	switch {
	case ix == NotFound && jx == NotFound:
	case ix == NotFound:
		a.move(jx, i)
	case jx == NotFound:
		a.move(ix, j)
	default:
		a.vals[ix], a.vals[jx] = a.vals[jx], a.vals[ix]
	}
}

// move relocates the entry at position pos to column col.
func (a *CRSRow) move(pos, col int) {
	v := a.vals[pos]
	a.remove(pos)
	a.insert(col, v)
}

func (a *CRSRow) remove(pos int) {
	last := a.nz - 1
	copy(a.idxs[pos:last], a.idxs[pos+1:a.nz])
	copy(a.vals[pos:last], a.vals[pos+1:a.nz])
	a.idxs[last] = 0
	a.vals[last] = 0
	a.nz = last
}

// insert adds an entry for col, which must not be present.
func (a *CRSRow) insert(col int, v byte) {
	pos := sort.Search(a.nz, func(p int) bool {
		return int(a.idxs[p]) > col
	})
	a.Resize(a.nz + 1)
	copy(a.idxs[pos+1:a.nz], a.idxs[pos:a.nz-1])
	copy(a.vals[pos+1:a.nz], a.vals[pos:a.nz-1])
	a.idxs[pos] = uint16(col)
	a.vals[pos] = v
}

// String returns the entries as column:value pairs.
//
// Example: [0:5, 2:7]
func (a *CRSRow) String() string {
	out := make([]string, 0, a.nz)
	for i, idx := range a.Indices() {
		out = append(out, strconv.Itoa(int(idx))+":"+strconv.Itoa(int(a.vals[i])))
	}
	return "[" + strings.Join(out, ", ") + "]"
}

// Print writes the row expanded to width columns to w.
// The output is meant for debugging and may change.
func (a *CRSRow) Print(w io.Writer, width int) error {
	dense := make([]byte, width)
	a.Unpack(dense)
	bw := bufio.NewWriter(w)
	printRow(bw, dense)
	return bw.Flush()
}

// scratchRow returns a zeroed dense buffer of width octets.
// Return it with k.scratch.Put.
func (k *Kernel) scratchRow(width int) *[]byte {
	bp := k.scratch.Get().(*[]byte)
	if cap(*bp) < width {
		*bp = mustAlloc(AlignedCols(width))
	}
	*bp = (*bp)[:width]
	memclr(*bp)
	return bp
}

// AddSparse sets a = a + b, using width dense columns.
func (k *Kernel) AddSparse(a, b *CRSRow, width int) {
	k.AxpySparse(a, b, 1, width)
}

// AxpySparse sets a = a + u*b, using width dense columns.
//
// Both rows are expanded into dense scratch rows, combined with the same
// code as the dense operations and a is packed again. The cost is
// proportional to width regardless of the number of entries.
func (k *Kernel) AxpySparse(a, b *CRSRow, u byte, width int) {
	if u == 0 {
		return
	}
	ap, bp := k.scratchRow(width), k.scratchRow(width)
	aDense, bDense := *ap, *bp
	a.Unpack(aDense)
	b.Unpack(bDense)
	galMulSliceXor(k.o.tables, u, bDense, aDense, &k.o)
	a.Pack(aDense)
	k.scratch.Put(ap)
	k.scratch.Put(bp)
}
