package oblas

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// MaxAlloc is the largest single buffer the kernel will allocate.
const MaxAlloc = 1<<31 - 1

// ErrAllocSize is returned when an allocation request is negative or
// larger than MaxAlloc.
var ErrAllocSize = errors.New("invalid allocation size")

// allocAligned returns n zeroed bytes suitable for vectorized access.
func allocAligned(n int) ([]byte, error) {
	if n < 0 || n > MaxAlloc {
		return nil, ErrAllocSize
	}
	return alignedBytes(n), nil
}

// allocAlignedIdxs returns n zeroed column indexes suitable for vectorized access.
func allocAlignedIdxs(n int) ([]uint16, error) {
	if n < 0 || n > MaxAlloc/2 {
		return nil, ErrAllocSize
	}
	return alignedIdxs(n), nil
}

// mustAlloc is allocAligned with a fatal failure.
// There is no meaningful recovery from a failed allocation inside an
// elimination loop, so the error is raised as a panic and no partial
// state is left for the caller.
func mustAlloc(n int) []byte {
	b, err := allocAligned(n)
	if err != nil {
		panic(pkgerrors.Wrapf(err, "oblas: allocating %d bytes", n))
	}
	return b
}

func mustAllocIdxs(n int) []uint16 {
	idxs, err := allocAlignedIdxs(n)
	if err != nil {
		panic(pkgerrors.Wrapf(err, "oblas: allocating %d indexes", n))
	}
	return idxs
}
