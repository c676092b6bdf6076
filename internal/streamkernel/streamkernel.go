// SPDX-License-Identifier: BSD-3-Clause

// Package streamkernel implements the fixed-memory processor for inputs
// larger than available RAM: bounded-buffer staged I/O that carries the
// minifier automaton state across refills, so a string literal or escape
// sequence straddling a buffer boundary is handled identically to the
// in-memory kernels.
package streamkernel

import (
	"io"

	"turbomin/internal/corestate"
	"turbomin/internal/scalarkernel"
	"turbomin/internal/turboresult"
)

// Stats reports the totals of one streaming run, mirrored into
// turboresult.Result by the caller.
type Stats struct {
	TotalIn  int64
	TotalOut int64
}

// Minify reads from r in bufferSize chunks, minifies each chunk with state
// carried from the previous one, and writes the result to w. Peak
// additional memory is O(bufferSize) regardless of total input size.
//
// I/O errors are wrapped as *turboresult.TurboError (itself backed by
// github.com/pkg/errors for a stack trace on the cause) so callers like
// cmd/root.go's exitCodeFor see the same error taxonomy streaming and
// in-memory callers do; the underlying reader/writer error is kept intact
// as the cause.
func Minify(r io.Reader, w io.Writer, bufferSize int) (Stats, error) {
	if bufferSize <= 0 {
		bufferSize = 1 << 20
	}
	in := make([]byte, bufferSize)
	out := make([]byte, bufferSize)
	st := corestate.Outside
	var stats Stats

	for {
		rn, rerr := io.ReadFull(r, in)
		if rn > 0 {
			stats.TotalIn += int64(rn)
			wn, newSt := scalarkernel.MinifyContinue(in[:rn], out, st)
			st = newSt
			if wn > 0 {
				written, werr := w.Write(out[:wn])
				stats.TotalOut += int64(written)
				if werr != nil {
					return stats, turboresult.IOError("io_write", werr)
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr == io.ErrUnexpectedEOF {
			// Final short read: rn bytes above were already the last data.
			break
		}
		if rerr != nil {
			return stats, turboresult.IOError("io_read", rerr)
		}
	}

	if st == corestate.InsideString || st == corestate.InsideStringAfterBackslash {
		return stats, turboresult.InvalidInput("unterminated_string", int(stats.TotalIn))
	}
	return stats, nil
}
