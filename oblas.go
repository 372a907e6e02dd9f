/**
 * Elementary operations on octet matrices.
 *
 * Copyright 2015, Klaus Post
 * Copyright 2015, Backblaze, Inc.
 */

// Package oblas implements dense and sparse linear algebra primitives
// over GF(2^8), as needed by Gaussian elimination based erasure decoders.
//
// The package executes elementary row and column operations. Choosing
// pivots and the order of elimination is left to the caller.
//
// Matrices and rows are not safe for concurrent use. A Kernel may be
// shared between goroutines as long as they operate on different
// matrices.
package oblas

import (
	"errors"
	"sync"
)

// ErrAliasing is raised when the output of Gemm is also an input.
var ErrAliasing = errors.New("output matrix must not alias an input")

// Kernel performs field arithmetic on matrices and sparse rows.
// Construct with New.
type Kernel struct {
	o options

	// dense scratch rows for sparse arithmetic.
	scratch sync.Pool
}

// New returns a Kernel configured with the given options.
func New(opts ...Option) *Kernel {
	k := &Kernel{o: defaultOptions}
	for _, opt := range opts {
		opt(&k.o)
	}
	if k.o.tables == nil {
		k.o.tables = DefaultTables()
	}
	size := k.o.scratchSize
	k.scratch.New = func() interface{} {
		b := mustAlloc(size)
		return &b
	}
	return k
}

// Tables returns the multiplication tables used by k.
func (k *Kernel) Tables() *Tables {
	return k.o.tables
}

// SIMD reports whether row additions of k use vectorized instructions.
func (k *Kernel) SIMD() bool {
	return k.o.simdXor()
}

// CopyRow copies the first n octets of row j of src into row i of dst.
func CopyRow(dst, src *Matrix, i, j, n int) {
	copy(dst.Row(i)[:n], src.Row(j)[:n])
}

// SwapRows exchanges the first n octets of rows i and j.
func SwapRows(a *Matrix, i, j, n int) {
	if i == j {
		return
	}
	ap, bp := a.Row(i)[:n], a.Row(j)[:n]
	for idx := range ap {
		ap[idx], bp[idx] = bp[idx], ap[idx]
	}
}

// SwapCols exchanges columns i and j in the first rows rows of a.
func SwapCols(a *Matrix, i, j, rows int) {
	if i == j {
		return
	}
	for r := 0; r < rows; r++ {
		row := a.Row(r)
		row[i], row[j] = row[j], row[i]
	}
}

// ZeroRow clears the first n octets of row i.
func ZeroRow(a *Matrix, i, n int) {
	memclr(a.Row(i)[:n])
}

// ZeroRows clears count whole rows starting at row i, padding included.
func ZeroRows(a *Matrix, i, count int) {
	if count == 0 {
		return
	}
	if i < 0 || count < 0 || i+count > a.rows {
		panic(ErrInvalidRowSize)
	}
	memclr(a.data[i*a.stride : (i+count)*a.stride])
}

func memclr(s []byte) {
	for i := range s {
		s[i] = 0
	}
}

// Axpy adds u times row j of src to row i of dst, over n octets.
//
// Multiplying by 0 leaves dst untouched, and multiplying by 1 is a
// plain addition that does not use the tables.
func (k *Kernel) Axpy(dst, src *Matrix, i, j, n int, u byte) {
	if u == 0 {
		return
	}
	galMulSliceXor(k.o.tables, u, src.Row(j)[:n], dst.Row(i)[:n], &k.o)
}

// AddRow adds row j of src to row i of dst, over n octets.
func (k *Kernel) AddRow(dst, src *Matrix, i, j, n int) {
	sliceXor(src.Row(j)[:n], dst.Row(i)[:n], &k.o)
}

// Scal multiplies the first n octets of row i by u.
//
// Note that a scalar of 0 leaves the row unchanged, it does not clear it.
// Use ZeroRow for that.
func (k *Kernel) Scal(a *Matrix, i, n int, u byte) {
	if u == 0 || u == 1 {
		return
	}
	row := a.Row(i)[:n]
	galMulSlice(k.o.tables, u, row, row)
}

// Gemm computes c = a * b, where a is n x p, b is p x m and c is n x m.
//
// Each row of c is cleared and built by accumulating scaled rows of b.
// c must be a different matrix than a and b.
func (k *Kernel) Gemm(a, b, c *Matrix, n, p, m int) {
	if c == a || c == b {
		panic(ErrAliasing)
	}
	for row := 0; row < n; row++ {
		ap := a.Row(row)[:p]
		ZeroRow(c, row, m)
		for idx, u := range ap {
			k.Axpy(c, b, row, idx, m, u)
		}
	}
}

// Multiply returns a new matrix with the product of a and b.
// ErrMatrixSize is returned if the columns of a do not match the rows of b.
func (k *Kernel) Multiply(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, ErrMatrixSize
	}
	c := NewMatrix(a.rows, b.cols)
	k.Gemm(a, b, c, a.rows, a.cols, b.cols)
	return c, nil
}
