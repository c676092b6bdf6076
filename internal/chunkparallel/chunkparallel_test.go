// SPDX-License-Identifier: BSD-3-Clause

package chunkparallel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"turbomin/internal/scalarkernel"
)

func TestDiscoverSplitsSingleThread(t *testing.T) {
	chunks := DiscoverSplits([]byte(`{"a":1}`), 4, 1)
	assert.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 7, chunks[0].End)
}

func TestDiscoverSplitsLandOutsideStrings(t *testing.T) {
	// Nominal boundary at offset 4 falls inside the string literal; the
	// search must walk forward to an Outside byte instead of splitting
	// through it.
	in := []byte(`{"abcdefghij": 1}`)
	chunks := DiscoverSplits(in, 4, 2)
	// The closing quote of the key is at offset 12, so the first Outside
	// offset at or after 4 is 13.
	assert.Len(t, chunks, 2)
	assert.Equal(t, 13, chunks[1].Start)
	var buf bytes.Buffer
	for _, c := range chunks {
		buf.Write(in[c.Start:c.End])
	}
	assert.Equal(t, string(in), buf.String())
}

func TestMinifyMatchesScalarAcrossChunkCounts(t *testing.T) {
	in := []byte(strings.Repeat(`{"a": 1, "b": "hello world", "c": [1,2,3]}, `, 200))
	in = append([]byte("["), in...)
	in = append(in, ']')
	want := scalarkernel.MinifyAppend(in)

	for _, threads := range []int{1, 2, 4, 8} {
		got, err := Minify(in, Options{ThreadCount: threads, ChunkSize: 128})
		if err != nil {
			t.Fatalf("threads=%d: unexpected error: %v", threads, err)
		}
		assert.Equal(t, string(want), string(got), "threads=%d", threads)
	}
}

func TestMinifyCancelledBeforeStart(t *testing.T) {
	cancel := make(chan struct{})
	close(cancel)
	in := []byte(strings.Repeat(`{"a": 1} `, 1000))
	_, err := Minify(in, Options{ThreadCount: 4, ChunkSize: 64, Cancel: cancel})
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestMinifyReportsWorkerFaultWithChunkIndex(t *testing.T) {
	// An invalid chunk (unterminated string at the end of input) must
	// surface as a WorkerFault tagged with the chunk that failed, not a
	// generic error.
	in := []byte(strings.Repeat("1234567890 ", 50) + `"unterminated`)
	_, err := Minify(in, Options{ThreadCount: 4, ChunkSize: 64})
	if err == nil {
		t.Fatal("expected a worker fault for the unterminated string")
	}
	fault, ok := err.(*WorkerFault)
	if !ok {
		t.Fatalf("expected *WorkerFault, got %T", err)
	}
	if fault.ChunkIndex < 0 {
		t.Fatal("expected a non-negative chunk index")
	}
}
