/**
 * Dense octet matrices
 *
 * Copyright 2015, Klaus Post
 * Copyright 2015, Backblaze, Inc.
 */

package oblas

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Align is the unit rows are padded to.
// Strides are always a multiple of Align.
const Align = 16

// MaxDim is the largest number of rows or columns of a matrix.
const MaxDim = 1<<16 - 1

var ErrInvalidRowSize = errors.New("invalid row size")
var ErrInvalidColSize = errors.New("invalid column size")
var ErrColSizeMismatch = errors.New("column size is not the same for all rows")

// AlignedCols returns the stride used for rows of c columns.
func AlignedCols(c int) int {
	return ((c + Align - 1) / Align) * Align
}

// Matrix is a dense matrix of octets.
//
// Rows are stored back to back in a single buffer, each padded to
// Stride() bytes. The padding is zero when allocated and never read by
// the kernel operations.
//
// The zero value is an empty matrix ready to be resized.
type Matrix struct {
	data   []byte
	rows   int
	cols   int
	stride int
}

// NewMatrix returns a rows x cols matrix of zeros.
func NewMatrix(rows, cols int) *Matrix {
	m := &Matrix{}
	m.Resize(rows, cols)
	return m
}

// NewMatrixData returns a matrix initialized with the given row-major data.
// The data is copied.
func NewMatrixData(data [][]byte) (*Matrix, error) {
	rows := len(data)
	if rows == 0 || rows > MaxDim {
		return nil, ErrInvalidRowSize
	}
	cols := len(data[0])
	if cols == 0 || cols > MaxDim {
		return nil, ErrInvalidColSize
	}
	for _, row := range data {
		if len(row) != cols {
			return nil, ErrColSizeMismatch
		}
	}
	m := NewMatrix(rows, cols)
	for i, row := range data {
		copy(m.Row(i), row)
	}
	return m, nil
}

// IdentityMatrix returns an identity matrix of the given size.
func IdentityMatrix(size int) *Matrix {
	m := NewMatrix(size, size)
	for i := 0; i < size; i++ {
		m.data[i*m.stride+i] = 1
	}
	return m
}

// Resize allocates a new zeroed buffer for rows x cols octets.
// Previous content is discarded.
// Dimensions outside 0..MaxDim panic.
func (m *Matrix) Resize(rows, cols int) {
	if rows < 0 || rows > MaxDim {
		panic(ErrInvalidRowSize)
	}
	if cols < 0 || cols > MaxDim {
		panic(ErrInvalidColSize)
	}
	m.rows = rows
	m.cols = cols
	m.stride = AlignedCols(cols)
	m.data = mustAlloc(rows * m.stride)
}

// CopyFrom makes m a deep copy of src.
// The buffer of m is reused when it is large enough.
func (m *Matrix) CopyFrom(src *Matrix) {
	size := src.rows * src.stride
	if m.data == nil || cap(m.data) < size {
		m.data = mustAlloc(size)
	}
	m.data = m.data[:size]
	m.rows = src.rows
	m.cols = src.cols
	m.stride = src.stride
	copy(m.data, src.data[:size])
}

// Destroy releases the buffer and resets m to an empty matrix.
// It is safe to call Destroy more than once.
func (m *Matrix) Destroy() {
	m.rows = 0
	m.cols = 0
	m.stride = 0
	m.data = nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Stride returns the distance in bytes between two rows.
func (m *Matrix) Stride() int { return m.stride }

// Bytes returns the underlying buffer, including row padding.
func (m *Matrix) Bytes() []byte { return m.data }

// Row returns row i as a slice of Cols() octets.
// The slice aliases the matrix.
func (m *Matrix) Row(i int) []byte {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("oblas: row %d out of range [0,%d)", i, m.rows))
	}
	off := i * m.stride
	return m.data[off : off+m.cols : off+m.cols]
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) byte {
	return m.Row(i)[j]
}

// Set sets the element at row i, column j.
func (m *Matrix) Set(i, j int, v byte) {
	m.Row(i)[j] = v
}

// String returns a human-readable string of the matrix contents.
//
// Example: [[1, 2], [3, 4]]
func (m *Matrix) String() string {
	rowOut := make([]string, 0, m.rows)
	for i := 0; i < m.rows; i++ {
		colOut := make([]string, 0, m.cols)
		for _, col := range m.Row(i) {
			colOut = append(colOut, strconv.Itoa(int(col)))
		}
		rowOut = append(rowOut, "["+strings.Join(colOut, ", ")+"]")
	}
	return "[" + strings.Join(rowOut, ", ") + "]"
}

// Print writes a table of the matrix to w.
// The output is meant for debugging and may change.
func (m *Matrix) Print(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "[%dx%d]\n", m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		printRow(bw, m.Row(i))
	}
	return bw.Flush()
}

func printRow(w io.Writer, row []byte) {
	for j, v := range row {
		if j == 0 {
			fmt.Fprintf(w, "|%3d", v)
			continue
		}
		fmt.Fprintf(w, ", %3d", v)
	}
	if len(row) == 0 {
		fmt.Fprint(w, "|")
	}
	fmt.Fprint(w, "  |\n")
}

var ErrMatrixSize = errors.New("matrix sizes does not match")

// SameSize returns ErrMatrixSize if n does not have the dimensions of m.
func (m *Matrix) SameSize(n *Matrix) error {
	if m.rows != n.rows || m.cols != n.cols {
		return ErrMatrixSize
	}
	return nil
}

// Equal returns true if m and n have the same dimensions and elements.
// Row padding is ignored.
func (m *Matrix) Equal(n *Matrix) bool {
	if m.SameSize(n) != nil {
		return false
	}
	for i := 0; i < m.rows; i++ {
		a, b := m.Row(i), n.Row(i)
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
