// SPDX-License-Identifier: BSD-3-Clause

// Package scalarkernel implements the byte-at-a-time reference minifier.
// It is the ground truth every other kernel is differentially tested
// against.
package scalarkernel

import (
	"bytes"

	"turbomin/internal/corestate"
)

// Minify writes the minified form of input into dst and returns the number
// of bytes written. dst must have length >= len(input); the caller is
// responsible for sizing it (MinifyAppend does so).
//
// Outside a string, whitespace is dropped with a branchless emit:
// dst[pos] = b; pos += keep, where keep is 0 or 1 from the lookup table.
// Inside a string, runs between quote/backslash events are bulk-copied with
// bytes.IndexAny so long string bodies don't pay a per-byte branch.
func Minify(input []byte, dst []byte) int {
	n, _ := MinifyContinue(input, dst, corestate.Outside)
	return n
}

// MinifyAppend is a convenience wrapper that allocates a correctly sized
// destination and returns the minified slice.
func MinifyAppend(input []byte) []byte {
	dst := make([]byte, len(input))
	n := Minify(input, dst)
	return dst[:n]
}

// MinifyContinue runs the automaton starting from an externally supplied
// state (e.g. a chunk boundary or a streaming refill) and returns the
// bytes written plus the state at the end of input. The streaming kernel,
// the SIMD kernel's fallback path and the chunk-parallel orchestrator build
// on this; the pipeline-parallel orchestrator tracks string state with its
// own loop over the classification masks.
func MinifyContinue(input []byte, dst []byte, start corestate.State) (n int, end corestate.State) {
	st := start
	pos := 0
	i := 0
	sz := len(input)
	for i < sz {
		switch st {
		case corestate.Outside:
			b := input[i]
			if b == corestate.Quote {
				dst[pos] = b
				pos++
				st = corestate.InsideString
				i++
				continue
			}
			keep := 0
			if !corestate.IsWhitespace[b] {
				keep = 1
			}
			dst[pos] = b
			pos += keep
			i++
		case corestate.InsideString:
			rest := input[i:]
			k := bytes.IndexAny(rest, "\"\\")
			if k < 0 {
				copy(dst[pos:], rest)
				pos += len(rest)
				i = sz
				continue
			}
			if k > 0 {
				copy(dst[pos:pos+k], rest[:k])
				pos += k
				i += k
			}
			b := input[i]
			dst[pos] = b
			pos++
			i++
			if b == corestate.Quote {
				st = corestate.Outside
			} else {
				st = corestate.InsideStringAfterBackslash
			}
		case corestate.InsideStringAfterBackslash:
			dst[pos] = input[i]
			pos++
			i++
			st = corestate.InsideString
		}
	}
	return pos, st
}
