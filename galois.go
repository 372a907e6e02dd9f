/**
 * Multiplication over an 8-bit Galois Field
 *
 * Copyright 2015, Klaus Post
 * Copyright 2015, Backblaze, Inc.
 */

package oblas

import (
	"encoding/binary"
	"sync"

	"github.com/templexxx/xorsimd"
)

// Tables holds the nibble-split product tables of GF(2^8).
//
// The product of u and x is High[u][x>>4] ^ Low[u][x&15].
// Each scalar only needs 32 bytes of table, so the tables used while
// processing a row stay in L1.
type Tables struct {
	Low  [256][16]byte
	High [256][16]byte
}

// Mul returns u*x in the field described by t.
func (t *Tables) Mul(u, x byte) byte {
	return t.High[u][x>>4] ^ t.Low[u][x&15]
}

// generatingPolynomial is x^8 + x^4 + x^3 + x^2 + 1.
const generatingPolynomial = 0x11d

var (
	defaultTables     *Tables
	defaultTablesOnce sync.Once
)

// DefaultTables returns the process-wide tables for the field
// generated by 0x11d. The returned value must not be modified.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		defaultTables = genTables(generatingPolynomial)
	})
	return defaultTables
}

func genTables(poly int) *Tables {
	t := &Tables{}
	for u := 0; u < 256; u++ {
		for n := 0; n < 16; n++ {
			t.Low[u][n] = slowMul(byte(u), byte(n), poly)
			t.High[u][n] = slowMul(byte(u), byte(n<<4), poly)
		}
	}
	return t
}

// slowMul is carry-less multiplication reduced by poly.
func slowMul(a, b byte, poly int) byte {
	x, y := int(a), int(b)
	var p int
	for y != 0 {
		if y&1 != 0 {
			p ^= x
		}
		y >>= 1
		x <<= 1
		if x&0x100 != 0 {
			x ^= poly
		}
	}
	return byte(p)
}

// galMulSlice sets out = c * in.
func galMulSlice(t *Tables, c byte, in, out []byte) {
	out = out[:len(in)]
	if c == 1 {
		copy(out, in)
		return
	}
	low, high := &t.Low[c], &t.High[c]
	for n, input := range in {
		out[n] = low[input&0xf] ^ high[input>>4]
	}
}

// galMulSliceXor adds c * in to out.
func galMulSliceXor(t *Tables, c byte, in, out []byte, o *options) {
	if c == 0 {
		return
	}
	if c == 1 {
		sliceXor(in, out, o)
		return
	}
	out = out[:len(in)]
	low, high := &t.Low[c], &t.High[c]
	for n, input := range in {
		out[n] ^= low[input&0xf] ^ high[input>>4]
	}
}

// simple slice xor
func sliceXor(in, out []byte, o *options) {
	if o.simdXor() && len(in) >= 16 {
		xorsimd.Bytes(out, out, in)
		return
	}
	sliceXorGo(in, out, o)
}

// sliceXorGo xors in into out, 8 bytes at the time.
func sliceXorGo(in, out []byte, _ *options) {
	for len(in) >= 32 {
		inS := in[:32]
		outS := out[:32]
		v0 := binary.LittleEndian.Uint64(outS[:8]) ^ binary.LittleEndian.Uint64(inS[:8])
		v1 := binary.LittleEndian.Uint64(outS[8:16]) ^ binary.LittleEndian.Uint64(inS[8:16])
		v2 := binary.LittleEndian.Uint64(outS[16:24]) ^ binary.LittleEndian.Uint64(inS[16:24])
		v3 := binary.LittleEndian.Uint64(outS[24:32]) ^ binary.LittleEndian.Uint64(inS[24:32])
		binary.LittleEndian.PutUint64(outS[:8], v0)
		binary.LittleEndian.PutUint64(outS[8:16], v1)
		binary.LittleEndian.PutUint64(outS[16:24], v2)
		binary.LittleEndian.PutUint64(outS[24:32], v3)
		out = out[32:]
		in = in[32:]
	}
	out = out[:len(in)]
	for n, input := range in {
		out[n] ^= input
	}
}
