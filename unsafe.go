//go:build !noasm && !nounsafe && !gccgo && !appengine

/**
 * Aligned buffers for the octet kernel.
 *
 * Copyright 2023, Klaus Post
 */

package oblas

import "unsafe"

// AllocAligned allocates 'shards' slices, with 'each' bytes.
// Each slice will start on a 64 byte aligned boundary.
func AllocAligned(shards, each int) [][]byte {
	eachAligned := ((each + 63) / 64) * 64
	total := mustAlloc(eachAligned * shards)
	res := make([][]byte, shards)
	for i := range res {
		res[i] = total[:each:eachAligned]
		total = total[eachAligned:]
	}
	return res
}

// alignedBytes returns n zeroed bytes starting on a 64 byte boundary.
func alignedBytes(n int) []byte {
	if n == 0 {
		return []byte{}
	}
	total := make([]byte, n+63)
	align := uint(uintptr(unsafe.Pointer(&total[0]))) & 63
	if align != 0 {
		align = 64 - align
	}
	return total[align : align+uint(n) : align+uint(n)]
}

// alignedIdxs returns n zeroed column indexes starting on a 64 byte boundary.
func alignedIdxs(n int) []uint16 {
	if n == 0 {
		return []uint16{}
	}
	b := alignedBytes(n * 2)
	return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), n)
}
