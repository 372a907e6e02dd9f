package oblas

import (
	"github.com/klauspost/cpuid/v2"
)

// Option allows to override processing parameters.
type Option func(*options)

type options struct {
	tables      *Tables
	scratchSize int

	useSSE2, useAVX2, useNEON bool
}

var defaultOptions = options{
	scratchSize: 1024,
}

func init() {
	// Detect CPU capabilities.
	defaultOptions.useSSE2 = cpuid.CPU.Supports(cpuid.SSE2)
	defaultOptions.useAVX2 = cpuid.CPU.Supports(cpuid.AVX2)
	defaultOptions.useNEON = cpuid.CPU.Supports(cpuid.ASIMD)
}

// simdXor reports whether row additions may use the vectorized xor.
// The widest instruction set available is picked by xorsimd itself.
func (o *options) simdXor() bool {
	return o.useSSE2 || o.useAVX2 || o.useNEON
}

// WithTables replaces the field multiplication tables used by the kernel.
// This is mostly useful for testing. A nil value keeps the default tables.
func WithTables(t *Tables) Option {
	return func(o *options) {
		if t != nil {
			o.tables = t
		}
	}
}

// WithScratchSize sets the initial width of the dense scratch buffers
// used when operating on sparse rows. Buffers grow on demand.
// If n <= 0, the default is used.
func WithScratchSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = defaultOptions.scratchSize
		}
		o.scratchSize = n
	}
}

// WithSSE2 allows to enable/disable SSE2 accelerated row additions.
// If not set, SSE2 will be turned on or off automatically based on CPU ID information.
func WithSSE2(enabled bool) Option {
	return func(o *options) {
		o.useSSE2 = enabled
	}
}

// WithAVX2 allows to enable/disable AVX2 accelerated row additions.
// If not set, AVX2 will be turned on or off automatically based on CPU ID information.
func WithAVX2(enabled bool) Option {
	return func(o *options) {
		o.useAVX2 = enabled
	}
}

// WithNEON allows to enable/disable NEON (ASIMD) accelerated row additions on arm64.
// If not set, NEON will be turned on or off automatically based on CPU ID information.
func WithNEON(enabled bool) Option {
	return func(o *options) {
		o.useNEON = enabled
	}
}
