// SPDX-License-Identifier: BSD-3-Clause

// Package turbomin is a streaming JSON minifier tuned for very high
// throughput: it removes insignificant whitespace from a JSON document
// while preserving string-literal content bit-exactly, selecting between
// scalar, SIMD-vectorised and chunk-parallel implementations based on input
// size and detected hardware capabilities. A pipeline-parallel
// implementation exists (internal/pipelineparallel) but the selector never
// chooses it.
package turbomin

import (
	"io"
	"sync"
	"time"

	"turbomin/internal/capability"
	"turbomin/internal/chunkparallel"
	"turbomin/internal/minifyconfig"
	"turbomin/internal/pipelineparallel"
	"turbomin/internal/scalarkernel"
	"turbomin/internal/simdkernel"
	"turbomin/internal/strategy"
	"turbomin/internal/streamkernel"
	"turbomin/internal/turboresult"
	"turbomin/internal/validate"
)

// Config is the minification configuration.
type Config = minifyconfig.Config

// Result is the uniform result record returned by Minify.
type Result = turboresult.Result

// CapabilityRecord describes the host's detected vector widths, core
// count and NUMA topology.
type CapabilityRecord = capability.Record

var (
	capOnce   sync.Once
	capRecord capability.Record
)

// Capabilities returns the process-wide capability record, probing the
// host exactly once regardless of how many times it's called. The record
// is immutable and safe to share by reference.
func Capabilities() CapabilityRecord {
	capOnce.Do(func() {
		capRecord = capability.Probe()
	})
	return capRecord
}

// DefaultConfig returns the documented configuration defaults: all
// logical cores, 256 KiB chunks, a 1 MiB streaming buffer, validation on.
func DefaultConfig() Config {
	return minifyconfig.Defaults()
}

// Minify removes insignificant whitespace from input and returns the
// result with its metrics. It is a pure function over (input, config);
// no cross-call state survives beyond the process-wide capability record.
func Minify(input []byte, cfg Config) (Result, error) {
	start := time.Now()
	caps := Capabilities()

	zero := Config{}
	if cfg == zero {
		cfg = DefaultConfig()
	}
	if cfg.ThreadCount == 0 {
		cfg.ThreadCount = caps.LogicalCores
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 256 * 1024
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1 << 20
	}
	if verr := cfg.Validate(caps.LogicalCores * 4); verr != nil {
		return Result{}, verr
	}

	if cfg.ValidateInput {
		if verr := validate.Validate(input); verr != nil {
			return Result{}, turboresult.InvalidInput(string(verr.Kind), verr.ByteOffset)
		}
	}

	desc := strategy.Select(len(input), caps, cfg)

	var out []byte
	var cancel <-chan struct{}
	if cfg.Cancel != nil {
		cancel = cfg.Cancel.Done()
	}

	switch desc.Name {
	case turboresult.StrategyScalar:
		out = scalarkernel.MinifyAppend(input)
	case turboresult.StrategySIMD128:
		out = simdkernel.MinifyAppend(input, simdkernel.Width128)
	case turboresult.StrategySIMD256:
		out = simdkernel.MinifyAppend(input, simdkernel.Width256)
	case turboresult.StrategySIMD512:
		out = simdkernel.MinifyAppend(input, simdkernel.Width512)
	case turboresult.StrategyPipelineParallel:
		pOut, err := pipelineparallel.Minify(input)
		if err != nil {
			return Result{}, err
		}
		out = pOut
	case turboresult.StrategyChunkParallel:
		width := simdWidthFor(caps)
		cOut, err := chunkparallel.Minify(input, chunkparallel.Options{
			ThreadCount: cfg.ThreadCount,
			ChunkSize:   cfg.ChunkSize,
			Width:       width,
			Cancel:      cancel,
		})
		if err != nil {
			if err == chunkparallel.ErrCancelled {
				return Result{}, err
			}
			// A parallel call that cannot complete for a non-fault reason
			// retries once as scalar before surfacing.
			if _, isFault := err.(*chunkparallel.WorkerFault); !isFault {
				out = scalarkernel.MinifyAppend(input)
				break
			}
			return Result{}, err
		}
		out = cOut
	case turboresult.StrategyStreaming:
		out = scalarkernel.MinifyAppend(input) // in-memory input has no reader/writer to stream over
	default:
		out = scalarkernel.MinifyAppend(input)
	}

	return turboresult.NewResult(out, len(input), desc.Name, start, desc.EstimatedThroughput), nil
}

func simdWidthFor(caps capability.Record) simdkernel.Width {
	switch caps.BestWidth() {
	case capability.Width512:
		return simdkernel.Width512
	case capability.Width256:
		return simdkernel.Width256
	case capability.Width128:
		return simdkernel.Width128
	default:
		return 0
	}
}

// StreamStats reports the totals of one MinifyStream call.
type StreamStats struct {
	TotalIn  int64
	TotalOut int64
}

// MinifyStream reads JSON from r and writes the minified output to w, in
// O(buffer_size) memory regardless of total input size.
func MinifyStream(r io.Reader, w io.Writer, cfg Config) (StreamStats, error) {
	bufSize := cfg.BufferSize
	if bufSize == 0 {
		bufSize = 1 << 20
	}
	stats, err := streamkernel.Minify(r, w, bufSize)
	return StreamStats{TotalIn: stats.TotalIn, TotalOut: stats.TotalOut}, err
}
