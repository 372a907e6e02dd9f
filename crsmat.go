package oblas

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// CRSMatrix is a matrix of independent sparse rows sharing a column count.
// The column count is not enforced on the rows; callers operating on
// single rows must keep them within Cols().
type CRSMatrix struct {
	rows []CRSRow
	cols int
}

// Triplet is a single non-zero element in coordinate form.
type Triplet struct {
	Row, Col uint16
	Val      byte
}

// NewCRSMatrix returns a rows x cols sparse matrix with all rows empty.
func NewCRSMatrix(rows, cols int) *CRSMatrix {
	m := &CRSMatrix{}
	m.Resize(rows, cols)
	return m
}

// PackMatrix returns the sparse form of d.
func PackMatrix(d *Matrix) *CRSMatrix {
	m := NewCRSMatrix(d.Rows(), d.Cols())
	for i := range m.rows {
		m.rows[i].Pack(d.Row(i))
	}
	return m
}

// Resize discards all rows and allocates rows empty rows.
func (m *CRSMatrix) Resize(rows, cols int) {
	if rows < 0 || rows > MaxDim {
		panic(ErrInvalidRowSize)
	}
	if cols < 0 || cols > MaxDim {
		panic(ErrInvalidColSize)
	}
	m.rows = make([]CRSRow, rows)
	m.cols = cols
}

// CopyFrom makes m a deep copy of src.
func (m *CRSMatrix) CopyFrom(src *CRSMatrix) {
	if len(m.rows) != len(src.rows) {
		m.rows = make([]CRSRow, len(src.rows))
	}
	for i := range src.rows {
		m.rows[i].CopyFrom(&src.rows[i])
	}
	m.cols = src.cols
}

// Destroy releases every row. It is safe to call more than once.
func (m *CRSMatrix) Destroy() {
	for i := range m.rows {
		m.rows[i].Destroy()
	}
	m.rows = nil
	m.cols = 0
}

// Rows returns the number of rows.
func (m *CRSMatrix) Rows() int { return len(m.rows) }

// Cols returns the number of columns.
func (m *CRSMatrix) Cols() int { return m.cols }

// Row returns row i. The row is owned by m.
func (m *CRSMatrix) Row(i int) *CRSRow {
	return &m.rows[i]
}

// NonZeros returns the number of stored entries.
func (m *CRSMatrix) NonZeros() int {
	n := 0
	for i := range m.rows {
		n += m.rows[i].nz
	}
	return n
}

// Unpack writes m into d, which must have at least as many rows and
// columns as m. Previous content of the rows is cleared.
func (m *CRSMatrix) Unpack(d *Matrix) {
	if d.Rows() < len(m.rows) || d.Cols() < m.cols {
		panic(ErrMatrixSize)
	}
	for i := range m.rows {
		row := d.Row(i)
		memclr(row)
		m.rows[i].Unpack(row)
	}
}

// Each calls fn for every stored element, in row-major order.
func (m *CRSMatrix) Each(fn func(row, col int, val byte)) {
	for i := range m.rows {
		r := &m.rows[i]
		for j, idx := range r.Indices() {
			fn(i, int(idx), r.vals[j])
		}
	}
}

// Triplets returns all stored elements in row-major order.
func (m *CRSMatrix) Triplets() []Triplet {
	res := make([]Triplet, 0, m.NonZeros())
	m.Each(func(row, col int, val byte) {
		res = append(res, Triplet{Row: uint16(row), Col: uint16(col), Val: val})
	})
	return res
}

// String returns a human-readable string of the matrix contents.
//
// Example: [[0:5, 2:7], []]
func (m *CRSMatrix) String() string {
	out := make([]string, 0, len(m.rows))
	for i := range m.rows {
		out = append(out, m.rows[i].String())
	}
	return "[" + strings.Join(out, ", ") + "]"
}

// Print writes a dense table of the matrix to w.
// The output is meant for debugging and may change.
func (m *CRSMatrix) Print(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "[%dx%d]\n", len(m.rows), m.cols)
	dense := make([]byte, m.cols)
	for i := range m.rows {
		memclr(dense)
		m.rows[i].Unpack(dense)
		printRow(bw, dense)
	}
	return bw.Flush()
}
