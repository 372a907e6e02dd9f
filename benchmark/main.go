// Copyright 2023+, Klaus Post, see LICENSE for details.

package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/klauspost/oblas"
)

var (
	rows     = flag.Int("rows", 256, "Number of matrix rows")
	cols     = flag.Int("cols", 1024, "Number of matrix columns")
	density  = flag.Float64("density", 0.1, "Fraction of non-zero elements in sparse rows")
	op       = flag.String("op", "all", "Operation to benchmark")
	ops      = flag.Bool("ops", false, "Display operations and exit")
	duration = flag.Int("duration", 10, "Minimum number of seconds to run each operation.")
	progress = flag.Bool("progress", true, "Display progress while running")
	cpu      = flag.Int("cpu", 1, "Set maximum number of cores to use")
	csv      = flag.Bool("csv", false, "Output as CSV")
	seed     = flag.Int64("seed", 0, "Random seed")

	sSE2 = flag.Bool("sse2", cpuid.CPU.Has(cpuid.SSE2), "Use SSE2")
	aVX2 = flag.Bool("avx2", cpuid.CPU.Has(cpuid.AVX2), "Use AVX2")
	nEON = flag.Bool("neon", cpuid.CPU.Has(cpuid.ASIMD), "Use NEON")
)

type benchFn func(k *oblas.Kernel, rng *rand.Rand) (run func() int64)

var opDefinitions = map[string]struct {
	Description string
	Setup       benchFn
}{
	"gemm":   {Description: "Dense matrix multiply, rows x rows times rows x cols", Setup: setupGemm},
	"axpy":   {Description: "Scaled row accumulation over all rows", Setup: setupAxpy},
	"add":    {Description: "Row addition over all rows", Setup: setupAdd},
	"sparse": {Description: "Scaled sparse row accumulation over all rows", Setup: setupSparse},
}

func main() {
	flag.Parse()
	if *ops {
		printOps(0)
	}
	if *rows <= 0 || *rows > oblas.MaxDim {
		exitErr(errors.New("invalid row count"))
	}
	if *cols <= 0 || *cols > oblas.MaxDim {
		exitErr(errors.New("invalid column count"))
	}
	if *density <= 0 || *density > 1 {
		exitErr(errors.New("density must be in (0, 1]"))
	}
	runtime.GOMAXPROCS(*cpu)

	var names []string
	if *op == "all" {
		for name := range opDefinitions {
			names = append(names, name)
		}
		sort.Strings(names)
	} else {
		if _, ok := opDefinitions[*op]; !ok {
			fmt.Fprintf(os.Stderr, "ERR: unknown operation: %q\n", *op)
			printOps(1)
		}
		names = []string{*op}
	}

	k := oblas.New(oblas.WithSSE2(*sSE2), oblas.WithAVX2(*aVX2), oblas.WithNEON(*nEON))
	if *csv {
		*progress = false
		fmt.Printf("op\t%v\t%v\t%v\t%v\t%v\n", "rows", "cols", "processed bytes", "duration (μs)", "speed ("+sizeUint+"/s)")
	} else {
		fmt.Printf("Benchmarking %dx%d matrices on %s. SSE2: %v, AVX2: %v, NEON: %v, SIMD xor: %v.\n\n", *rows, *cols, cpuid.CPU.BrandName, *sSE2, *aVX2, *nEON, k.SIMD())
	}

	// Reduce GC overhead
	debug.SetGCPercent(25)
	for _, name := range names {
		rng := rand.New(rand.NewSource(*seed))
		benchmark(name, opDefinitions[name].Setup(k, rng))
	}
}

const updateFreq = time.Second / 3

var spin = [...]byte{'|', '/', '-', '\\'}

const speedDivisor = float64(1 << 20)
const speedUnit = "MiB/s"
const sizeUint = "MiB"

func benchmark(name string, run func() int64) {
	start := time.Now()
	finished := int64(0)
	lastUpdate := start
	end := start.Add(time.Second * time.Duration(*duration))
	spinIdx := 0
	for time.Now().Before(end) {
		finished += run()
		if *progress && time.Since(lastUpdate) > updateFreq {
			mb := float64(finished) * (1 / speedDivisor)
			speed := mb / (float64(time.Since(start)) / float64(time.Second))
			fmt.Printf("\r %s %s: %.02f %s @%.02f %s.", string(spin[spinIdx]), name, mb, sizeUint, speed, speedUnit)
			spinIdx = (spinIdx + 1) % len(spin)
			lastUpdate = time.Now()
		}
	}
	mb := float64(finished) * (1 / speedDivisor)
	speed := mb / (float64(time.Since(start)) / float64(time.Second))
	if *csv {
		fmt.Printf("%s\t%v\t%v\t%v\t%v\t%v\n", name, *rows, *cols, finished, time.Since(start).Microseconds(), speed)
	} else {
		fmt.Printf("\r * %s: processed %.00f %s in %v. Speed: %.02f %s\n", name, mb, sizeUint, time.Since(start).Round(time.Millisecond), speed, speedUnit)
	}
}

func randomMatrix(rng *rand.Rand, r, c int) *oblas.Matrix {
	m := oblas.NewMatrix(r, c)
	for i := 0; i < r; i++ {
		rng.Read(m.Row(i))
	}
	return m
}

func setupGemm(k *oblas.Kernel, rng *rand.Rand) func() int64 {
	a := randomMatrix(rng, *rows, *rows)
	b := randomMatrix(rng, *rows, *cols)
	c := oblas.NewMatrix(*rows, *cols)
	return func() int64 {
		k.Gemm(a, b, c, *rows, *rows, *cols)
		return int64(*rows) * int64(*rows) * int64(*cols)
	}
}

func setupAxpy(k *oblas.Kernel, rng *rand.Rand) func() int64 {
	a := randomMatrix(rng, *rows, *cols)
	src := randomMatrix(rng, 1, *cols)
	return func() int64 {
		for i := 0; i < *rows; i++ {
			k.Axpy(a, src, i, 0, *cols, byte(2+rng.Intn(254)))
		}
		return int64(*rows) * int64(*cols)
	}
}

func setupAdd(k *oblas.Kernel, rng *rand.Rand) func() int64 {
	a := randomMatrix(rng, *rows, *cols)
	src := randomMatrix(rng, 1, *cols)
	return func() int64 {
		for i := 0; i < *rows; i++ {
			k.AddRow(a, src, i, 0, *cols)
		}
		return int64(*rows) * int64(*cols)
	}
}

func setupSparse(k *oblas.Kernel, rng *rand.Rand) func() int64 {
	dense := oblas.AllocAligned(*rows, *cols)
	m := oblas.NewCRSMatrix(*rows, *cols)
	for i, row := range dense {
		for j := range row {
			if rng.Float64() < *density {
				row[j] = byte(1 + rng.Intn(255))
			}
		}
		m.Row(i).Pack(row)
	}
	pivot := m.Row(0)
	return func() int64 {
		for i := 1; i < m.Rows(); i++ {
			k.AxpySparse(m.Row(i), pivot, byte(2+rng.Intn(254)), m.Cols())
		}
		return int64(m.Rows()-1) * int64(m.Cols())
	}
}

func printOps(exitCode int) {
	var keys []string
	maxLen := 0
	for k := range opDefinitions {
		keys = append(keys, k)
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		def := opDefinitions[k]
		k = k + strings.Repeat(" ", maxLen-len(k))
		fmt.Printf("%s %s.\n", k, def.Description)
	}
	// Exit
	if exitCode >= 0 {
		os.Exit(exitCode)
	}
}

func exitErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %s\n", err.Error())
		os.Exit(1)
	}
}
