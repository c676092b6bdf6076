// SPDX-License-Identifier: BSD-3-Clause

// Package turboresult implements the uniform result record returned by
// every minify call and the error taxonomy shared across kernels.
package turboresult

import (
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// StrategyName identifies one of the seven minification strategies.
type StrategyName string

const (
	StrategyScalar           StrategyName = "scalar"
	StrategySIMD128          StrategyName = "simd-128"
	StrategySIMD256          StrategyName = "simd-256"
	StrategySIMD512          StrategyName = "simd-512"
	StrategyStreaming        StrategyName = "streaming"
	StrategyChunkParallel    StrategyName = "chunk-parallel"
	StrategyPipelineParallel StrategyName = "pipeline-parallel"
)

// Result carries the minified output together with its metrics.
type Result struct {
	Output              []byte
	InputSize           int
	OutputSize          int
	CompressionRatio    float64
	DurationMicros      int64
	PeakMemoryBytes     int64
	StrategyUsed        StrategyName
	EstimatedThroughput float64 // MB/s, from the strategy's estimate() at selection time
}

// NewResult computes the derived fields (compression ratio, output size)
// from a finished minification and wraps them with the timing/strategy
// metadata the caller already has.
func NewResult(output []byte, inputSize int, strategy StrategyName, start time.Time, estimatedMBps float64) Result {
	outSize := len(output)
	ratio := 0.0
	if inputSize > 0 {
		ratio = 1 - float64(outSize)/float64(inputSize)
	}
	return Result{
		Output:              output,
		InputSize:           inputSize,
		OutputSize:          outSize,
		CompressionRatio:    ratio,
		DurationMicros:      time.Since(start).Microseconds(),
		PeakMemoryBytes:     int64(outSize + inputSize),
		StrategyUsed:        strategy,
		EstimatedThroughput: estimatedMBps,
	}
}

// ErrorCategory groups error kinds by how they propagate, and maps
// directly to the CLI exit codes.
type ErrorCategory int

const (
	CategoryInput ErrorCategory = iota + 1
	CategoryIO
	CategoryConfiguration
	CategoryInternal
	CategoryResource
)

// ExitCode returns the process exit code the CLI uses for this category.
func (c ErrorCategory) ExitCode() int {
	switch c {
	case CategoryInput:
		return 1
	case CategoryIO:
		return 2
	case CategoryConfiguration:
		return 3
	case CategoryInternal:
		return 4
	default:
		return 4
	}
}

// TurboError is the concrete, errors.As-compatible error type for input,
// I/O, configuration, internal and resource errors. The chunk-parallel
// orchestrator's *chunkparallel.WorkerFault and chunkparallel.ErrCancelled
// are returned by turbomin.Minify as they are, not as a TurboError.
type TurboError struct {
	Category   ErrorCategory
	Kind       string
	ByteOffset int // -1 if not applicable
	ChunkIndex int // -1 if not applicable
	Cause      error
}

func (e *TurboError) Error() string {
	msg := fmt.Sprintf("%s", e.Kind)
	if e.ByteOffset >= 0 {
		msg = fmt.Sprintf("%s at byte %d", msg, e.ByteOffset)
	}
	if e.ChunkIndex >= 0 {
		msg = fmt.Sprintf("%s (chunk %d)", msg, e.ChunkIndex)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TurboError) Unwrap() error { return e.Cause }

// InvalidInput builds an `invalid_input{kind, byte_offset}` error.
func InvalidInput(kind string, byteOffset int) *TurboError {
	return &TurboError{Category: CategoryInput, Kind: kind, ByteOffset: byteOffset, ChunkIndex: -1}
}

// IOError builds an `io_read`/`io_write` error, wrapped with a stack trace
// via github.com/pkg/errors so the first "internal" hop can be diagnosed.
func IOError(kind string, cause error) *TurboError {
	return &TurboError{Category: CategoryIO, Kind: kind, ByteOffset: -1, ChunkIndex: -1, Cause: pkgerrors.WithStack(cause)}
}

// ConfigurationError builds an `invalid_chunk_size`/`invalid_thread_count`/
// `conflicting_overrides` error.
func ConfigurationError(kind string) *TurboError {
	return &TurboError{Category: CategoryConfiguration, Kind: kind, ByteOffset: -1, ChunkIndex: -1}
}

// WorkerFault builds a `worker_fault{chunk_index, kind}` error.
func WorkerFault(chunkIndex int, kind string, cause error) *TurboError {
	return &TurboError{Category: CategoryInternal, Kind: kind, ByteOffset: -1, ChunkIndex: chunkIndex, Cause: pkgerrors.WithStack(cause)}
}

// AllocationFailed builds an `allocation_failed` resource error.
func AllocationFailed(cause error) *TurboError {
	return &TurboError{Category: CategoryResource, Kind: "allocation_failed", ByteOffset: -1, ChunkIndex: -1, Cause: pkgerrors.WithStack(cause)}
}

// WorkerSpawnFailed builds a `worker_spawn_failed` resource error.
func WorkerSpawnFailed(cause error) *TurboError {
	return &TurboError{Category: CategoryResource, Kind: "worker_spawn_failed", ByteOffset: -1, ChunkIndex: -1, Cause: pkgerrors.WithStack(cause)}
}
