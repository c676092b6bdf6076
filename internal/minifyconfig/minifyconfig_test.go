// SPDX-License-Identifier: BSD-3-Clause

package minifyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, OverrideAuto, cfg.StrategyOverride)
	assert.True(t, cfg.ValidateInput)
	assert.Equal(t, 256*1024, cfg.ChunkSize)
	assert.Equal(t, 1<<20, cfg.BufferSize)
}

func TestMergeOverlaysNonZeroFields(t *testing.T) {
	base := Defaults()
	override := Config{ThreadCount: 2, ValidateInput: false}
	merged := base.Merge(override)
	assert.Equal(t, 2, merged.ThreadCount)
	assert.False(t, merged.ValidateInput)
	assert.Equal(t, base.ChunkSize, merged.ChunkSize)
}

func TestValidateRejectsTinyChunkSize(t *testing.T) {
	cfg := Config{ChunkSize: 100}
	if err := cfg.Validate(16); err == nil {
		t.Fatal("expected invalid_chunk_size error")
	}
}

func TestValidateRejectsExcessiveThreadCount(t *testing.T) {
	cfg := Config{ThreadCount: 999}
	if err := cfg.Validate(16); err == nil {
		t.Fatal("expected invalid_thread_count error")
	}
}

func TestValidateRejectsNegativeThreadCount(t *testing.T) {
	cfg := Config{ThreadCount: -1}
	if err := cfg.Validate(16); err == nil {
		t.Fatal("expected invalid_thread_count error")
	}
}

func TestValidateAcceptsZeroValues(t *testing.T) {
	if err := (Config{}).Validate(16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("thread_count: 4\nstrategy_override: scalar\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 4, cfg.ThreadCount)
	assert.Equal(t, OverrideScalar, cfg.StrategyOverride)
	assert.True(t, cfg.ValidateInput, "validate_input omitted from YAML should keep the default of true")
}

func TestLoadHonorsExplicitFalseValidateInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("validate_input: false\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.False(t, cfg.ValidateInput)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
