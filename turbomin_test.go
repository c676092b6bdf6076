// SPDX-License-Identifier: BSD-3-Clause

package turbomin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"turbomin/internal/minifyconfig"
)

func TestMinifyDefaultConfig(t *testing.T) {
	result, err := Minify([]byte(`{ "a" : 1,  "b" : [1, 2, 3] }`), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, `{"a":1,"b":[1,2,3]}`, string(result.Output))
	assert.Equal(t, 29, result.InputSize)
	assert.Equal(t, len(result.Output), result.OutputSize)
}

func TestMinifyEmptyInput(t *testing.T) {
	result, err := Minify([]byte{}, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 0, result.OutputSize)
}

func TestMinifyRejectsMalformedInputByDefault(t *testing.T) {
	_, err := Minify([]byte(`{"a": "unterminated`), Config{})
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestMinifySkipsValidationWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ValidateInput = false
	// Malformed input is accepted when validation is off; the scalar
	// automaton still produces deterministic (if not meaningful) output.
	_, err := Minify([]byte(`{"a": "unterminated`), cfg)
	if err != nil {
		t.Fatalf("unexpected error with validation disabled: %v", err)
	}
}

func TestMinifyPinnedScalarStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrategyOverride = minifyconfig.OverrideScalar
	result, err := Minify([]byte(`{"a": 1}`), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, `{"a":1}`, string(result.Output))
}

func TestMinifyRejectsInvalidThreadCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThreadCount = -5
	_, err := Minify([]byte(`{}`), cfg)
	if err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestMinifyLargeInputMatchesScalarReference(t *testing.T) {
	one := `{"id": 1, "name": "  spaced out value  ", "tags": ["x", "y", "z"]}, `
	in := "[" + strings.Repeat(one, 5000) + `"tail"]`

	scalarCfg := DefaultConfig()
	scalarCfg.StrategyOverride = minifyconfig.OverrideScalar
	want, err := Minify([]byte(in), scalarCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	autoCfg := DefaultConfig()
	got, err := Minify([]byte(in), autoCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, string(want.Output), string(got.Output))
}

func TestMinifyStreamMatchesInMemory(t *testing.T) {
	in := `{ "a" : 1,  "b" : [1, 2, 3] }`
	var out bytes.Buffer
	stats, err := MinifyStream(strings.NewReader(in), &out, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, `{"a":1,"b":[1,2,3]}`, out.String())
	assert.Equal(t, int64(len(in)), stats.TotalIn)
}

func TestCapabilitiesIsStableAcrossCalls(t *testing.T) {
	a := Capabilities()
	b := Capabilities()
	assert.Equal(t, a.LogicalCores, b.LogicalCores)
	assert.Equal(t, a.NUMANodes, b.NUMANodes)
}
