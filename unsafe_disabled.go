//go:build noasm || nounsafe || gccgo || appengine

/**
 * Aligned buffers for the octet kernel.
 *
 * Copyright 2023, Klaus Post
 */

package oblas

// AllocAligned allocates 'shards' slices, with 'each' bytes.
// Without unsafe the slices are not guaranteed to be aligned.
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

func alignedBytes(n int) []byte {
	return make([]byte, n)
}

func alignedIdxs(n int) []uint16 {
	return make([]uint16, n)
}
