// SPDX-License-Identifier: BSD-3-Clause

// Package minifyconfig holds the minification configuration and loads it
// from a YAML file.
package minifyconfig

import (
	"context"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"turbomin/internal/turboresult"
)

// StrategyOverride pins strategy selection; the zero value means "auto".
type StrategyOverride string

const (
	OverrideAuto          StrategyOverride = ""
	OverrideScalar        StrategyOverride = "scalar"
	OverrideSIMD          StrategyOverride = "simd"
	OverrideStreaming     StrategyOverride = "streaming"
	OverrideChunkParallel StrategyOverride = "parallel"
)

// Config is the minification configuration. All fields are optional;
// Defaults() fills in the documented defaults.
type Config struct {
	ThreadCount      int              `yaml:"thread_count"`
	ChunkSize        int              `yaml:"chunk_size"`
	StrategyOverride StrategyOverride `yaml:"strategy_override"`
	ValidateInput    bool             `yaml:"validate_input"`
	BufferSize       int              `yaml:"buffer_size"`

	// Cancel is a cooperative cancellation token, checked between chunks
	// by the chunk-parallel orchestrator; the pipeline-parallel
	// orchestrator does not consult it. Not part of the YAML-loadable
	// surface; it's a runtime handle, not static configuration.
	Cancel context.Context `yaml:"-"`
}

// Defaults returns the configuration with every field at its documented
// default.
func Defaults() Config {
	return Config{
		ThreadCount:      runtime.NumCPU(),
		ChunkSize:        256 * 1024,
		StrategyOverride: OverrideAuto,
		ValidateInput:    true,
		BufferSize:       1 << 20,
	}
}

// Merge overlays the non-zero ThreadCount, ChunkSize, StrategyOverride,
// BufferSize and Cancel fields of override onto a copy of c. ValidateInput
// is always taken from override, whether true or false.
func (c Config) Merge(override Config) Config {
	out := c
	if override.ThreadCount != 0 {
		out.ThreadCount = override.ThreadCount
	}
	if override.ChunkSize != 0 {
		out.ChunkSize = override.ChunkSize
	}
	if override.StrategyOverride != OverrideAuto {
		out.StrategyOverride = override.StrategyOverride
	}
	if override.BufferSize != 0 {
		out.BufferSize = override.BufferSize
	}
	out.ValidateInput = override.ValidateInput
	if override.Cancel != nil {
		out.Cancel = override.Cancel
	}
	return out
}

// Validate rejects chunk sizes under 4 KiB and thread counts that are
// negative or beyond the hardware limit.
func (c Config) Validate(hardwareThreadLimit int) *turboresult.TurboError {
	if c.ChunkSize != 0 && c.ChunkSize < 4096 {
		return turboresult.ConfigurationError("invalid_chunk_size")
	}
	if c.ThreadCount < 0 || (hardwareThreadLimit > 0 && c.ThreadCount > hardwareThreadLimit) {
		return turboresult.ConfigurationError("invalid_thread_count")
	}
	return nil
}

// fileConfig mirrors Config but with a pointer for ValidateInput so an
// absent YAML key is distinguishable from an explicit `false` -- a plain
// bool field can't tell "not set" from "set to the zero value" when
// merging onto a default of true.
type fileConfig struct {
	ThreadCount      int              `yaml:"thread_count"`
	ChunkSize        int              `yaml:"chunk_size"`
	StrategyOverride StrategyOverride `yaml:"strategy_override"`
	ValidateInput    *bool            `yaml:"validate_input"`
	BufferSize       int              `yaml:"buffer_size"`
}

// Load reads a YAML configuration file and merges it over Defaults().
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, err
	}
	override := Config{
		ThreadCount:      fc.ThreadCount,
		ChunkSize:        fc.ChunkSize,
		StrategyOverride: fc.StrategyOverride,
		ValidateInput:    cfg.ValidateInput,
		BufferSize:       fc.BufferSize,
	}
	if fc.ValidateInput != nil {
		override.ValidateInput = *fc.ValidateInput
	}
	return cfg.Merge(override), nil
}
