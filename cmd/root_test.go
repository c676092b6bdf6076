// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"turbomin/internal/minifyconfig"
	"turbomin/internal/turboresult"
)

func TestBuildConfigDefaultsToAuto(t *testing.T) {
	flagConfigPath = ""
	flagThreads = 0
	flagChunkSize = 0
	flagNoValidate = false
	flagMode = "auto"

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, minifyconfig.OverrideAuto, cfg.StrategyOverride)
	assert.True(t, cfg.ValidateInput)
}

func TestBuildConfigAppliesFlagOverrides(t *testing.T) {
	flagConfigPath = ""
	flagThreads = 4
	flagChunkSize = 65536
	flagNoValidate = true
	flagMode = "scalar"
	defer func() {
		flagThreads = 0
		flagChunkSize = 0
		flagNoValidate = false
		flagMode = "auto"
	}()

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 4, cfg.ThreadCount)
	assert.Equal(t, 65536, cfg.ChunkSize)
	assert.False(t, cfg.ValidateInput)
	assert.Equal(t, minifyconfig.OverrideScalar, cfg.StrategyOverride)
}

func TestBuildConfigRejectsUnknownMode(t *testing.T) {
	flagConfigPath = ""
	flagMode = "not-a-real-mode"
	defer func() { flagMode = "auto" }()

	_, err := buildConfig()
	if err == nil {
		t.Fatal("expected an error for an unrecognized --mode value")
	}
}

func TestExitCodeForFallsBackOnUnrecognizedError(t *testing.T) {
	assert.Equal(t, 4, exitCodeFor(errPlain("boom")))
}

func TestBuildConfigConflictingOverridesFromFlagAndConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("strategy_override: streaming\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	flagConfigPath = path
	flagMode = "scalar"
	if err := rootCmd.Flags().Set("mode", "scalar"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer func() {
		flagConfigPath = ""
		flagMode = "auto"
		rootCmd.Flags().Lookup("mode").Changed = false
	}()

	_, err := buildConfig()
	if err == nil {
		t.Fatal("expected a conflicting_overrides configuration error")
	}
	te, ok := err.(*turboresult.TurboError)
	if !ok {
		t.Fatalf("expected *turboresult.TurboError, got %T", err)
	}
	assert.Equal(t, "conflicting_overrides", te.Kind)
}

func TestBuildConfigFlagOverridesUnchangedConfigFileStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("strategy_override: streaming\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	flagConfigPath = path
	flagMode = "auto"
	defer func() { flagConfigPath = "" }()

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, minifyconfig.OverrideStreaming, cfg.StrategyOverride)
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
