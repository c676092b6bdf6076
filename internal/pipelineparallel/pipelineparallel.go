// SPDX-License-Identifier: BSD-3-Clause

// Package pipelineparallel implements the four-stage pipeline orchestrator:
// classify -> string-boundary mark -> compact -> emit, connected by
// channels acting as single-producer single-consumer FIFOs.
//
// Go has no portable lock-free SPSC ring buffer in the standard library;
// a buffered channel with exactly one sender and one receiver goroutine
// preserves the guarantee the design depends on, strict production-order
// delivery between adjacent stages.
package pipelineparallel

import (
	"turbomin/internal/corestate"
	"turbomin/internal/simdkernel"
)

const subChunkSize = 8 << 10

const classifyBlockSize = 64 // widest supported block size, see simdkernel.Width512

type classified struct {
	index int
	data  []byte
	// masks holds one BlockMasks per classifyBlockSize-byte block of data:
	// block-at-a-time, not one mask for the whole sub-chunk (a single
	// 64-bit mask cannot address more than 64 bytes).
	masks []simdkernel.BlockMasks
}

type marked struct {
	index    int
	data     []byte
	inString []bool
}

type compacted struct {
	index int
	out   []byte
}

// Minify runs the pipeline over input and returns the minified output.
// Best suited for >=4 cores, but correct (just not a throughput win) on
// fewer.
func Minify(input []byte) ([]byte, error) {
	subChunks := splitSubChunks(input, subChunkSize)
	nStages := len(subChunks)
	if nStages == 0 {
		return []byte{}, nil
	}

	classifyCh := make(chan classified, nStages)
	markCh := make(chan marked, nStages)
	compactCh := make(chan compacted, nStages)
	done := make(chan struct{})

	// Stage 1: classify. One producer, emits in sub-chunk order into a
	// buffered channel sized to hold every sub-chunk, so stage 2 can
	// consume in order without the classify stage having to block on
	// stage 2's pace.
	go func() {
		defer close(classifyCh)
		for i, sc := range subChunks {
			masks := make([]simdkernel.BlockMasks, 0, (len(sc)+classifyBlockSize-1)/classifyBlockSize)
			for b := 0; b < len(sc); b += classifyBlockSize {
				end := b + classifyBlockSize
				if end > len(sc) {
					end = len(sc)
				}
				masks = append(masks, simdkernel.Classify(sc[b:end]))
			}
			classifyCh <- classified{index: i, data: sc, masks: masks}
		}
	}()

	// Stage 2: string-boundary mark. Carries automaton state across the
	// sub-chunk seam: since classifyCh is consumed strictly in production
	// order (single consumer, buffered FIFO), the state threaded from one
	// iteration to the next is exactly the state at the seam.
	go func() {
		defer close(markCh)
		st := corestate.Outside
		for c := range classifyCh {
			inString := make([]bool, len(c.data))
			localSt := st
			for i := range c.data {
				inString[i] = localSt != corestate.Outside
				blockMasks := c.masks[i/classifyBlockSize]
				bit := uint64(1) << uint(i%classifyBlockSize)
				isQuote := blockMasks.Quote&bit != 0
				isEscape := blockMasks.Escape&bit != 0
				switch localSt {
				case corestate.Outside:
					if isQuote {
						localSt = corestate.InsideString
					}
				case corestate.InsideString:
					switch {
					case isQuote:
						localSt = corestate.Outside
					case isEscape:
						localSt = corestate.InsideStringAfterBackslash
					}
				case corestate.InsideStringAfterBackslash:
					localSt = corestate.InsideString
				}
			}
			markCh <- marked{index: c.index, data: c.data, inString: inString}
			st = localSt
		}
	}()

	// Stage 3: compact. Bytes belonging to a string are always kept
	// regardless of the classify stage's whitespace mask.
	go func() {
		defer close(compactCh)
		for m := range markCh {
			out := make([]byte, len(m.data))
			n := 0
			for i, b := range m.data {
				if m.inString[i] || !corestate.IsWhitespace[b] {
					out[n] = b
					n++
				}
			}
			compactCh <- compacted{index: m.index, out: out[:n]}
		}
	}()

	// Stage 4: emit. Reassembles sub-chunk outputs in sub-chunk order.
	results := make([][]byte, nStages)
	go func() {
		defer close(done)
		for c := range compactCh {
			results[c.index] = c.out
		}
	}()
	<-done

	total := 0
	for _, r := range results {
		total += len(r)
	}
	final := make([]byte, 0, total)
	for _, r := range results {
		final = append(final, r...)
	}
	return final, nil
}

func splitSubChunks(input []byte, size int) [][]byte {
	if size <= 0 {
		size = subChunkSize
	}
	var chunks [][]byte
	for i := 0; i < len(input); i += size {
		end := i + size
		if end > len(input) {
			end = len(input)
		}
		chunks = append(chunks, input[i:end])
	}
	return chunks
}
