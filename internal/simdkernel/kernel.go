// SPDX-License-Identifier: BSD-3-Clause

package simdkernel

import (
	"turbomin/internal/corestate"
	"turbomin/internal/scalarkernel"
)

// Minify runs the two-stage classify/compact pipeline at the given width,
// falling back to the scalar kernel for any block containing a quote or
// backslash, or while the automaton is inside a string, plus the final
// short remainder.
//
// Returns the number of bytes written and the automaton state at the end
// of input, so callers (such as the chunk-parallel orchestrator) can carry
// state across a boundary exactly as the scalar kernel does.
func Minify(input []byte, dst []byte, width Width, start corestate.State) (n int, end corestate.State) {
	blockSize := width.BlockSize()
	st := start
	pos := 0
	i := 0
	total := len(input)

	for i < total {
		remaining := total - i
		if st != corestate.Outside || remaining < blockSize {
			// Inside a string, or too little left for a full block: hand
			// off to the scalar automaton one block at a time (never more),
			// so the loop rechecks after every block and resumes the
			// block fast path as soon as the automaton is back Outside.
			// A long string must not pull the rest of the input into a
			// single scalar call.
			step := remaining
			if step > blockSize {
				step = blockSize
			}
			written, newSt := scalarkernel.MinifyContinue(input[i:i+step], dst[pos:], st)
			pos += written
			i += step
			st = newSt
			continue
		}

		block := input[i : i+blockSize]
		masks := Classify(block)
		if masks.Compactable() {
			keep := masks.KeepMask(len(block))
			written := Compact(block, keep, dst[pos:])
			pos += written
			i += blockSize
			// Outside-only block with no quotes: state is unchanged (Outside).
			continue
		}

		// Block contains a quote or escape byte: fall back to the scalar
		// automaton for exactly this block so correctness never depends on
		// vectorisation.
		written, newSt := scalarkernel.MinifyContinue(block, dst[pos:], st)
		pos += written
		i += blockSize
		st = newSt
	}
	return pos, st
}

// MinifyAppend is a convenience wrapper mirroring scalarkernel.MinifyAppend.
func MinifyAppend(input []byte, width Width) []byte {
	dst := make([]byte, len(input))
	n, _ := Minify(input, dst, width, corestate.Outside)
	return dst[:n]
}
