// SPDX-License-Identifier: BSD-3-Clause

// Package benchmark is a subcommand of the root command. It runs every
// eligible strategy against one input file and reports measured vs.
// estimated throughput.
package benchmark

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"turbomin"
	"turbomin/internal/capability"
	"turbomin/internal/minifyconfig"
	"turbomin/internal/pipelineparallel"
	"turbomin/internal/simdkernel"
	"turbomin/internal/strategy"
	"turbomin/internal/turboprogress"
	"turbomin/internal/turboreport"
	"turbomin/internal/turboresult"
)

const cmdName = "benchmark"

var (
	flagOutXLSX string
)

// Cmd runs every strategy eligible for the input's size against it and
// prints a comparison table, optionally saved as a spreadsheet.
var Cmd = &cobra.Command{
	Use:     cmdName,
	Aliases: []string{"bench"},
	Short:   "Benchmark every eligible strategy against an input file",
	Example: fmt.Sprintf("  $ %s input.json\n  $ %s --xlsx report.xlsx input.json", cmdName, cmdName),
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func init() {
	Cmd.Flags().StringVar(&flagOutXLSX, "xlsx", "", "write a spreadsheet comparing strategies to this path")
}

func run(cmd *cobra.Command, args []string) error {
	input, err := os.ReadFile(args[0])
	if err != nil {
		return turboresult.IOError("io_read", err)
	}

	caps := turbomin.Capabilities()
	candidates := eligibleStrategies(len(input), caps)

	spin := turboprogress.New()
	for _, name := range candidates {
		spin.Add(string(name))
	}
	spin.Start()

	runs := make([]turboreport.StrategyRun, 0, len(candidates))
	for _, name := range candidates {
		spin.Update(string(name), "running")
		start := time.Now()

		var outSize int
		var durationMicros int64
		switch name {
		case turboresult.StrategyPipelineParallel:
			// No config override pins this strategy (it has no CLI-facing
			// knob of its own), so it's run directly instead of through
			// the selector.
			out, perr := pipelineparallel.Minify(input)
			if perr != nil {
				spin.Update(string(name), fmt.Sprintf("error: %v", perr))
				continue
			}
			outSize = len(out)
			durationMicros = time.Since(start).Microseconds()
		case turboresult.StrategySIMD128, turboresult.StrategySIMD256, turboresult.StrategySIMD512:
			// Minify's auto-selector only ever runs the single best detected
			// width for an OverrideSIMD request, which would silently run
			// simd-512 for a row labelled simd-128. Each width is measured
			// directly so the comparison table reflects what it claims to.
			out := simdkernel.MinifyAppend(input, widthFor(name))
			outSize = len(out)
			durationMicros = time.Since(start).Microseconds()
		default:
			cfg := minifyconfig.Defaults()
			cfg.StrategyOverride = overrideFor(name)
			result, merr := turbomin.Minify(input, cfg)
			if merr != nil {
				spin.Update(string(name), fmt.Sprintf("error: %v", merr))
				continue
			}
			outSize = result.OutputSize
			durationMicros = result.DurationMicros
		}

		elapsed := time.Since(start)
		measuredMBps := 0.0
		if elapsed > 0 {
			measuredMBps = (float64(len(input)) / (1024 * 1024)) / elapsed.Seconds()
		}
		runs = append(runs, turboreport.StrategyRun{
			Strategy:            name,
			EstimatedThroughput: strategy.Estimate(name, len(input), caps),
			MeasuredThroughput:  measuredMBps,
			DurationMicros:      durationMicros,
			OutputSize:          outSize,
		})
		spin.Update(string(name), "done")
	}
	spin.Stop()

	sort.Slice(runs, func(i, j int) bool { return runs[i].MeasuredThroughput > runs[j].MeasuredThroughput })

	p := message.NewPrinter(language.English)
	p.Printf("%-20s %14s %14s %14s %12s\n", "strategy", "est_mbps", "measured_mbps", "duration_us", "out_bytes")
	for _, r := range runs {
		p.Printf("%-20s %14.1f %14.1f %14d %12d\n", r.Strategy, r.EstimatedThroughput, r.MeasuredThroughput, r.DurationMicros, r.OutputSize)
	}

	if flagOutXLSX != "" {
		if werr := turboreport.WriteXLSX(flagOutXLSX, len(input), runs); werr != nil {
			return turboresult.IOError("io_write", werr)
		}
	}
	return nil
}

// eligibleStrategies mirrors the strategies Select could plausibly choose
// for an input this size, so the benchmark compares like with like instead
// of forcing, say, chunk-parallel on a 200-byte document.
func eligibleStrategies(inputLen int, caps capability.Record) []turboresult.StrategyName {
	names := []turboresult.StrategyName{turboresult.StrategyScalar, turboresult.StrategyStreaming}
	if caps.VectorWidths.Contains(capability.Width128) {
		names = append(names, turboresult.StrategySIMD128)
	}
	if caps.VectorWidths.Contains(capability.Width256) {
		names = append(names, turboresult.StrategySIMD256)
	}
	if caps.VectorWidths.Contains(capability.Width512) {
		names = append(names, turboresult.StrategySIMD512)
	}
	if caps.LogicalCores >= 4 && inputLen >= 2*minifyconfig.Defaults().ChunkSize {
		names = append(names, turboresult.StrategyChunkParallel, turboresult.StrategyPipelineParallel)
	}
	return names
}

func overrideFor(name turboresult.StrategyName) minifyconfig.StrategyOverride {
	switch name {
	case turboresult.StrategyScalar:
		return minifyconfig.OverrideScalar
	case turboresult.StrategyStreaming:
		return minifyconfig.OverrideStreaming
	case turboresult.StrategyChunkParallel:
		return minifyconfig.OverrideChunkParallel
	default:
		return minifyconfig.OverrideAuto
	}
}

func widthFor(name turboresult.StrategyName) simdkernel.Width {
	switch name {
	case turboresult.StrategySIMD128:
		return simdkernel.Width128
	case turboresult.StrategySIMD256:
		return simdkernel.Width256
	case turboresult.StrategySIMD512:
		return simdkernel.Width512
	default:
		return simdkernel.Width128
	}
}
