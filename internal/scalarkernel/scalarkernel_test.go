// SPDX-License-Identifier: BSD-3-Clause

package scalarkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"turbomin/internal/corestate"
)

func TestMinifyAppendDropsWhitespace(t *testing.T) {
	out := MinifyAppend([]byte(`{ "a" : 1,  "b": [1, 2, 3] }`))
	assert.Equal(t, `{"a":1,"b":[1,2,3]}`, string(out))
}

func TestMinifyAppendPreservesStringWhitespace(t *testing.T) {
	in := []byte(`{"a": "  hello   world  "}`)
	out := MinifyAppend(in)
	assert.Equal(t, `{"a":"  hello   world  "}`, string(out))
}

func TestMinifyAppendPreservesEscapedQuote(t *testing.T) {
	in := []byte(`{"a": "say \"hi\""}`)
	out := MinifyAppend(in)
	assert.Equal(t, `{"a":"say \"hi\""}`, string(out))
}

func TestMinifyAppendEmptyInput(t *testing.T) {
	out := MinifyAppend([]byte{})
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestMinifyContinueCarriesState(t *testing.T) {
	// Split a string literal in half across two calls; the second call
	// must know it's still inside the string.
	first := []byte(`{"a": "hel`)
	second := []byte(`lo"}`)

	dst1 := make([]byte, len(first))
	n1, st := MinifyContinue(first, dst1, corestate.Outside)
	assert.Equal(t, corestate.InsideString, st)

	dst2 := make([]byte, len(second))
	n2, endSt := MinifyContinue(second, dst2, st)
	assert.Equal(t, corestate.Outside, endSt)

	got := string(dst1[:n1]) + string(dst2[:n2])
	assert.Equal(t, `{"a":"hello"}`, got)
}

func TestMinifyMatchesMinifyAppend(t *testing.T) {
	in := []byte(`  [1,  2,   3]  `)
	dst := make([]byte, len(in))
	n := Minify(in, dst)
	assert.Equal(t, string(MinifyAppend(in)), string(dst[:n]))
}
