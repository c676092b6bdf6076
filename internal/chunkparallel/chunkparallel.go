// SPDX-License-Identifier: BSD-3-Clause

// Package chunkparallel implements the chunk-parallel orchestrator: safe
// split-point discovery, work-queue dispatch to a worker pool, and
// ordered result reassembly.
package chunkparallel

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"turbomin/internal/corestate"
	"turbomin/internal/scalarkernel"
	"turbomin/internal/simdkernel"
	"turbomin/internal/validate"
)

// Chunk is one contiguous span of the input bounded by two safe split
// points: offsets where the automaton is Outside, so chunks can be
// minified independently and concatenated.
type Chunk struct {
	Start, End int
}

// DiscoverSplits walks forward from each nominal chunk boundary
// (multiples of chunkSize) until it finds a safe split point: a byte
// offset where the automaton is Outside. It returns the chunks bounded by
// up to threadCount-1 such split points plus the implicit 0 and len(input)
// boundaries; their concatenated minified outputs equal the
// single-threaded output.
func DiscoverSplits(input []byte, chunkSize, threadCount int) []Chunk {
	if threadCount < 1 {
		threadCount = 1
	}
	n := len(input)
	if threadCount == 1 || n == 0 {
		return []Chunk{{Start: 0, End: n}}
	}

	splits := make([]int, 0, threadCount-1)
	// Track automaton state across the whole input once, forward, so each
	// nominal boundary search resumes from where the last one left off
	// instead of re-scanning from zero.
	st := corestate.Outside
	scanned := 0
	for k := 1; k < threadCount; k++ {
		nominal := k * chunkSize
		if nominal <= scanned {
			nominal = scanned + 1
		}
		if nominal >= n {
			break
		}
		p := nominal
		for p < n {
			// Advance st from `scanned` up to `p` to know the state there.
			for scanned < p {
				st = corestate.Step(st, input[scanned])
				scanned++
			}
			if st == corestate.Outside {
				break
			}
			p++
		}
		if p >= n {
			break
		}
		splits = append(splits, p)
	}

	chunks := make([]Chunk, 0, len(splits)+1)
	prev := 0
	for _, s := range splits {
		chunks = append(chunks, Chunk{Start: prev, End: s})
		prev = s
	}
	chunks = append(chunks, Chunk{Start: prev, End: n})
	return chunks
}

// WorkerFault wraps the first error reported by a chunk worker, tagged
// with the index of the chunk that failed.
type WorkerFault struct {
	ChunkIndex int
	Err        error
}

func (f *WorkerFault) Error() string {
	return errors.Wrapf(f.Err, "worker_fault: chunk %d", f.ChunkIndex).Error()
}

func (f *WorkerFault) Unwrap() error { return f.Err }

// ErrCancelled is returned when the cooperative cancellation token fires
// before every chunk has been processed. Workers check the token between
// chunks, never mid-chunk, so cancellation latency is bounded by one
// chunk's processing time.
var ErrCancelled = errors.New("minification cancelled")

// Options configures one parallel run.
type Options struct {
	ThreadCount int
	ChunkSize   int
	Width       simdkernel.Width // best available SIMD width, or 0 for scalar-only
	Cancel      <-chan struct{}  // cooperative cancellation, checked between chunks
}

// Minify dispatches chunks to a worker pool over a single atomic task
// index (a lock-free fetch-and-add chunk claim), each worker producing
// output into its own scratch buffer sized to its input chunk length,
// then reassembles in original chunk order.
func Minify(input []byte, opts Options) ([]byte, error) {
	chunks := DiscoverSplits(input, opts.ChunkSize, opts.ThreadCount)
	outputs := make([][]byte, len(chunks))
	lengths := make([]int, len(chunks))
	faults := make([]*WorkerFault, len(chunks))

	var nextIdx int64 = -1
	var wg sync.WaitGroup
	workers := opts.ThreadCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-opts.Cancel:
				return
			default:
			}
			idx := atomic.AddInt64(&nextIdx, 1)
			if idx >= int64(len(chunks)) {
				return
			}
			c := chunks[idx]
			chunkInput := input[c.Start:c.End]
			// A chunk boundary legitimately falls mid-object or mid-array
			// (DiscoverSplits only guarantees Outside state, not balanced
			// depth); only ValidateChunk's weaker per-chunk check applies
			// here, not the whole-document Validate.
			if verr := validate.ValidateChunk(chunkInput); verr != nil {
				faults[idx] = &WorkerFault{ChunkIndex: int(idx), Err: verr}
				continue
			}
			scratch := make([]byte, len(chunkInput))
			var written int
			if opts.Width != 0 {
				written, _ = simdkernel.Minify(chunkInput, scratch, opts.Width, corestate.Outside)
			} else {
				written, _ = scalarkernel.MinifyContinue(chunkInput, scratch, corestate.Outside)
			}
			outputs[idx] = scratch
			lengths[idx] = written
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}
	wg.Wait()

	if opts.Cancel != nil {
		select {
		case <-opts.Cancel:
			return nil, ErrCancelled
		default:
		}
	}

	for _, f := range faults {
		if f != nil {
			return nil, f
		}
	}

	total := 0
	for _, l := range lengths {
		total += l
	}
	final := make([]byte, total)
	pos := 0
	for i := range chunks {
		n := copy(final[pos:], outputs[i][:lengths[i]])
		pos += n
	}
	return final, nil
}
