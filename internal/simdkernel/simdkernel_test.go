// SPDX-License-Identifier: BSD-3-Clause

package simdkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"turbomin/internal/corestate"
	"turbomin/internal/scalarkernel"
)

func TestBlockSizePerWidth(t *testing.T) {
	assert.Equal(t, 64, Width512.BlockSize())
	assert.Equal(t, 32, Width256.BlockSize())
	assert.Equal(t, 16, Width128.BlockSize())
}

func TestClassifyMasks(t *testing.T) {
	m := Classify([]byte(" \t\"\\,"))
	if m.WS&0b00011 == 0 {
		t.Fatal("expected leading whitespace bits set")
	}
	if m.Quote&(1<<2) == 0 {
		t.Fatal("expected quote bit set at index 2")
	}
	if m.Escape&(1<<3) == 0 {
		t.Fatal("expected escape bit set at index 3")
	}
	if m.Structural&(1<<4) == 0 {
		t.Fatal("expected comma to be marked structural")
	}
}

func TestCompactableGuardsQuoteAndEscape(t *testing.T) {
	assert.True(t, Classify([]byte("   123")).Compactable())
	assert.False(t, Classify([]byte(`  "x`)).Compactable())
	assert.False(t, Classify([]byte(`  \x`)).Compactable())
}

func TestCompactDropsWhitespace(t *testing.T) {
	block := []byte("1 2 3")
	m := Classify(block)
	keep := m.KeepMask(len(block))
	dst := make([]byte, len(block))
	n := Compact(block, keep, dst)
	assert.Equal(t, "123", string(dst[:n]))
}

func TestSWARHasQuote(t *testing.T) {
	withQuote := []byte{'a', 'b', 'c', '"', 'e', 'f', 'g', 'h'}
	withoutQuote := []byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h'}
	if !SWARHasQuote(leWord(withQuote)) {
		t.Fatal("expected quote to be detected")
	}
	if SWARHasQuote(leWord(withoutQuote)) {
		t.Fatal("expected no quote to be detected")
	}
}

func TestSWARFindQuote(t *testing.T) {
	w := leWord([]byte{'a', 'b', 'c', '"', 'e', 'f', 'g', 'h'})
	assert.Equal(t, 3, SWARFindQuote(w))
	assert.Equal(t, -1, SWARFindQuote(leWord([]byte("abcdefgh"))))
}

func leWord(b []byte) uint64 {
	var w uint64
	for i, c := range b {
		w |= uint64(c) << (8 * uint(i))
	}
	return w
}

func TestMinifyMatchesScalarForMixedInput(t *testing.T) {
	in := []byte(`{"name": "Alice Smith", "age": 30, "tags": ["a", "b", "c"], "nested": {"x": 1, "y": [1,2,3,4,5,6,7,8,9,10]}}`)
	want := scalarkernel.MinifyAppend(in)

	for _, w := range []Width{Width128, Width256, Width512} {
		got := MinifyAppend(in, w)
		assert.Equal(t, string(want), string(got), "width %d", w)
	}
}

func TestMinifyHandlesStringSpanningBlockBoundary(t *testing.T) {
	// A string literal deliberately straddles a 16-byte block boundary.
	in := []byte(`{"k":"0123456789012345678901234567890"}`)
	want := scalarkernel.MinifyAppend(in)
	got := MinifyAppend(in, Width128)
	assert.Equal(t, string(want), string(got))
}

func TestMinifyReturnsEndState(t *testing.T) {
	dst := make([]byte, 32)
	n, end := Minify([]byte(`"unterminated`), dst, Width128, corestate.Outside)
	assert.Equal(t, corestate.InsideString, end)
	assert.True(t, n > 0)
}
