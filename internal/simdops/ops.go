// Package simdops selects tphakala/simd vector kernels by sample type so the
// float32 and float64 processors share one generic implementation.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the sample type constraint used across the module.
type Float interface {
	float32 | float64
}

// Ops is a table of vector kernels for sample type F.
type Ops[F Float] struct {
	// DotProductUnsafe requires len(a) == len(b).
	DotProductUnsafe func(a, b []F) F

	// Interleave2 writes a[0], b[0], a[1], b[1], ... into dst.
	Interleave2 func(dst, a, b []F)

	Sum func(a []F) F

	// Scale sets dst[i] = a[i] * s. dst may alias a.
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{f32.DotProductUnsafe, f32.Interleave2, f32.Sum, f32.Scale}
	ops64 = Ops[float64]{f64.DotProductUnsafe, f64.Interleave2, f64.Sum, f64.Scale}
)

// For returns the kernel table for F. Resolve it once outside sample loops.
func For[F Float]() *Ops[F] {
	var zero F
	var table any
	switch any(zero).(type) {
	case float32:
		table = &ops32
	case float64:
		table = &ops64
	}
	ops, ok := table.(*Ops[F])
	if !ok {
		panic("simdops: unsupported sample type")
	}
	return ops
}

// Float32Ops returns the float32 table.
func Float32Ops() *Ops[float32] { return &ops32 }

// Float64Ops returns the float64 table.
func Float64Ops() *Ops[float64] { return &ops64 }

// CPUInfo names the instruction set the kernels dispatch to.
func CPUInfo() string {
	return cpu.Info()
}
