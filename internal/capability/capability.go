// SPDX-License-Identifier: BSD-3-Clause

// Package capability implements the CPU capability probe: one-shot
// detection of available vector extensions, core count and NUMA topology,
// exposed as an immutable record.
package capability

import (
	"runtime"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/klauspost/cpuid/v2"
)

// VectorWidth is a supported SIMD-classification block width in bits.
type VectorWidth int

const (
	Width128 VectorWidth = 128
	Width256 VectorWidth = 256
	Width512 VectorWidth = 512
)

// Record is the immutable capability record. Once built, it is safe to
// share by reference across goroutines without synchronization.
type Record struct {
	VectorWidths mapset.Set[VectorWidth]
	Features     mapset.Set[string]
	LogicalCores int
	NUMANodes    int
}

// Feature flag names recorded in Record.Features. They are reported by the
// capabilities subcommand; internal/strategy picks SIMD widths from
// Record.VectorWidths and does not read these flags.
const (
	FeatureByteCompact = "byte_compact" // hardware byte-compress/compress primitive
	FeatureSWAR        = "swar"         // 64-bit integer ops (always true in practice)
)

// Probe queries the host once and returns an immutable Record. It never
// fails: on any platform where a feature can't be determined, the
// feature is reported absent.
func Probe() Record {
	r := Record{
		VectorWidths: mapset.NewSet[VectorWidth](),
		Features:     mapset.NewSet[string](),
		LogicalCores: runtime.NumCPU(),
		NUMANodes:    numaNodeCount(),
	}

	if cpuid.CPU.Supports(cpuid.AVX512F) {
		r.VectorWidths.Add(Width512)
	}
	if cpuid.CPU.Supports(cpuid.AVX2) || cpuid.CPU.Supports(cpuid.AVX) {
		r.VectorWidths.Add(Width256)
	}
	if cpuid.CPU.Supports(cpuid.SSE2) || cpuid.CPU.Supports(cpuid.ASIMD) {
		r.VectorWidths.Add(Width128)
	}

	// FeatureByteCompact records whether the hardware offers a byte-level
	// compress instruction (VPCOMPRESSB et al.). The kernels run the
	// mask-driven software gather either way; the flag is for telemetry.
	if cpuid.CPU.Supports(cpuid.AVX512VBMI2) {
		r.Features.Add(FeatureByteCompact)
	}
	r.Features.Add(FeatureSWAR) // every supported Go platform has 64-bit int ops

	return r
}

// BestWidth returns the widest vector width available, or 0 if none.
func (r Record) BestWidth() VectorWidth {
	best := VectorWidth(0)
	for _, w := range []VectorWidth{Width512, Width256, Width128} {
		if r.VectorWidths.Contains(w) && w > best {
			return w
		}
	}
	return best
}
