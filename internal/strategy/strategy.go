// SPDX-License-Identifier: BSD-3-Clause

// Package strategy implements the strategy selector: given an input size
// and a capability record, picks the kernel predicted to be fastest, and
// exposes a per-strategy throughput estimate.
//
// The per-strategy estimates are small formula strings evaluated at
// runtime via github.com/casbin/govaluate, with `cores()` injected as a
// custom function. The throughput models are tunable descriptions, not
// guarantees; keeping them as expressions makes retuning a one-line edit.
package strategy

import (
	"math"

	"github.com/casbin/govaluate"

	"turbomin/internal/capability"
	"turbomin/internal/minifyconfig"
	"turbomin/internal/turboresult"
)

// Descriptor identifies a selected strategy together with its predicted
// throughput for the input size it was selected on.
type Descriptor struct {
	Name                turboresult.StrategyName
	EstimatedThroughput float64 // MB/s
}

// Inputs under 64 KiB never amortise block setup or worker dispatch.
const smallInputThreshold = 64 * 1024

// formula pairs a human-authored throughput model (in MB/s, as a function
// of input_len and cores) with the compiled expression that evaluates it.
type formula struct {
	name turboresult.StrategyName
	expr *govaluate.EvaluableExpression
}

var formulas = mustCompileFormulas(map[turboresult.StrategyName]string{
	// Baseline scalar throughput is roughly flat regardless of size; a
	// small per-call fixed overhead matters only for tiny inputs.
	turboresult.StrategyScalar: "350 - (2000 / (input_len + 1))",
	// SIMD-256 does noticeably better once inputs amortise setup cost.
	turboresult.StrategySIMD256: "1100 - (8000 / (input_len + 1))",
	turboresult.StrategySIMD512: "1900 - (12000 / (input_len + 1))",
	turboresult.StrategySIMD128: "650 - (4000 / (input_len + 1))",
	// Streaming pays a constant per-refill cost independent of total size.
	turboresult.StrategyStreaming: "280",
	// Chunk-parallel throughput scales with core count up to a point of
	// diminishing returns around 8 cores.
	turboresult.StrategyChunkParallel:    "1900 * min(cores(), 8) * 0.78",
	turboresult.StrategyPipelineParallel: "1900 * 3.2",
})

func mustCompileFormulas(raw map[turboresult.StrategyName]string) []formula {
	out := make([]formula, 0, len(raw))
	functions := map[string]govaluate.ExpressionFunction{
		"min": func(args ...interface{}) (interface{}, error) {
			a, b := toFloat(args[0]), toFloat(args[1])
			return math.Min(a, b), nil
		},
		// cores() is re-injected with the real capability record on every
		// Estimate call below; this stub exists only so the table compiles
		// at package-init time (its return value is never evaluated).
		"cores": func(args ...interface{}) (interface{}, error) {
			return float64(0), nil
		},
	}
	for name, src := range raw {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, functions)
		if err != nil {
			panic(err) // formulas are a fixed compile-time table; a typo here is a bug
		}
		out = append(out, formula{name: name, expr: expr})
	}
	return out
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Estimate evaluates strategy s's throughput formula for the given input
// length and capability record, returning MB/s.
func Estimate(s turboresult.StrategyName, inputLen int, caps capability.Record) float64 {
	for _, f := range formulas {
		if f.name != s {
			continue
		}
		params := map[string]interface{}{
			"input_len": float64(inputLen),
		}
		// `cores()` is injected per-call (not at table-compile time) since
		// it needs the capability record currently being selected against.
		fns := map[string]govaluate.ExpressionFunction{
			"cores": func(args ...interface{}) (interface{}, error) {
				return float64(caps.LogicalCores), nil
			},
			"min": func(args ...interface{}) (interface{}, error) {
				return math.Min(toFloat(args[0]), toFloat(args[1])), nil
			},
		}
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(f.expr.String(), fns)
		if err != nil {
			return 0
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			return 0
		}
		if v, ok := result.(float64); ok {
			if v < 0 {
				return 0
			}
			return v
		}
		return 0
	}
	return 0
}

// Select picks the strategy predicted fastest for an input of inputLen
// bytes on the probed hardware; first matching rule wins. An explicit
// override in cfg short-circuits everything else.
func Select(inputLen int, caps capability.Record, cfg minifyconfig.Config) Descriptor {
	pick := func(name turboresult.StrategyName) Descriptor {
		return Descriptor{Name: name, EstimatedThroughput: Estimate(name, inputLen, caps)}
	}

	if cfg.StrategyOverride != minifyconfig.OverrideAuto {
		switch cfg.StrategyOverride {
		case minifyconfig.OverrideScalar:
			return pick(turboresult.StrategyScalar)
		case minifyconfig.OverrideStreaming:
			return pick(turboresult.StrategyStreaming)
		case minifyconfig.OverrideChunkParallel:
			return pick(turboresult.StrategyChunkParallel)
		case minifyconfig.OverrideSIMD:
			return pick(bestSIMD(caps))
		}
	}

	if inputLen < smallInputThreshold {
		return pick(turboresult.StrategyScalar)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 256 * 1024
	}

	if caps.VectorWidths.Contains(capability.Width512) && inputLen < 2*chunkSize {
		return pick(turboresult.StrategySIMD512)
	}
	if caps.VectorWidths.Contains(capability.Width256) && inputLen < 2*chunkSize {
		return pick(turboresult.StrategySIMD256)
	}
	if inputLen >= 2*chunkSize && caps.LogicalCores >= 4 {
		return pick(turboresult.StrategyChunkParallel)
	}
	if exceedsAvailableMemoryHalf(inputLen) {
		return pick(turboresult.StrategyStreaming)
	}

	if best := bestSIMD(caps); best != "" {
		return pick(best)
	}
	return pick(turboresult.StrategyScalar)
}

func bestSIMD(caps capability.Record) turboresult.StrategyName {
	switch caps.BestWidth() {
	case capability.Width512:
		return turboresult.StrategySIMD512
	case capability.Width256:
		return turboresult.StrategySIMD256
	case capability.Width128:
		return turboresult.StrategySIMD128
	default:
		return ""
	}
}

// exceedsAvailableMemoryHalf decides when an input is large enough,
// relative to memory, to warrant the fixed-memory streaming kernel.
// There is no portable stdlib way to read total system memory, so any
// input over 512 MiB qualifies regardless of host RAM, a safe (if
// occasionally overcautious) approximation.
func exceedsAvailableMemoryHalf(inputLen int) bool {
	const conservativeThreshold = 512 * 1024 * 1024
	return inputLen > conservativeThreshold
}
