// SPDX-License-Identifier: BSD-3-Clause

// Package cmd provides the command line interface for the application.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"turbomin"
	"turbomin/cmd/benchmark"
	"turbomin/cmd/capabilities"
	"turbomin/cmd/telemetry"
	"turbomin/internal/app"
	"turbomin/internal/minifyconfig"
	"turbomin/internal/turboresult"
)

var gVersion = "9.9.9" // overwritten by ldflags at release build time

var rootCmd = &cobra.Command{
	Use:   app.Name + " [input_path] [output_path]",
	Short: app.Name,
	Long:  fmt.Sprintf(`%s is a high-throughput streaming JSON minifier.`, app.Name),
	Example: fmt.Sprintf("  Minify a file to stdout:         $ %s input.json\n"+
		"  Minify a file to another file:   $ %s input.json output.json\n"+
		"  Pin the scalar strategy:         $ %s --mode scalar input.json\n"+
		"  Print selected-strategy stats:   $ %s --stats input.json",
		app.Name, app.Name, app.Name, app.Name),
	Args:              cobra.RangeArgs(0, 2),
	PersistentPreRunE: initializeLogging,
	Version:           gVersion,
	SilenceUsage:      true,
}

var (
	flagDebug      bool
	flagMode       string
	flagThreads    int
	flagChunkSize  int
	flagNoValidate bool
	flagStats      bool
	flagConfigPath string
)

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.RunE = runMinify
	rootCmd.PersistentFlags().BoolVar(&flagDebug, app.FlagDebugName, false, "enable debug logging")
	rootCmd.Flags().StringVar(&flagMode, "mode", "auto", "strategy: scalar|simd|parallel|streaming|auto")
	rootCmd.Flags().IntVar(&flagThreads, "threads", 0, "worker count override (0 = all logical cores)")
	rootCmd.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "bytes per chunk for the chunk-parallel strategy (0 = default)")
	rootCmd.Flags().BoolVar(&flagNoValidate, "no-validate", false, "skip lightweight input validation")
	rootCmd.Flags().BoolVar(&flagStats, "stats", false, "print result statistics to stderr")
	rootCmd.Flags().StringVar(&flagConfigPath, app.FlagConfigName, "", "load minification configuration from a YAML file")

	rootCmd.AddCommand(capabilities.Cmd)
	rootCmd.AddCommand(benchmark.Cmd)
	rootCmd.AddCommand(telemetry.Cmd)
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func initializeLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func buildConfig() (minifyconfig.Config, error) {
	var cfg minifyconfig.Config
	var err error
	if flagConfigPath != "" {
		cfg, err = minifyconfig.Load(flagConfigPath)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = minifyconfig.Defaults()
	}

	if flagThreads != 0 {
		cfg.ThreadCount = flagThreads
	}
	if flagChunkSize != 0 {
		cfg.ChunkSize = flagChunkSize
	}
	if flagNoValidate {
		cfg.ValidateInput = false
	}

	modeOverride, err := overrideForMode(flagMode)
	if err != nil {
		return cfg, err
	}

	// A loaded config file may itself pin a strategy_override; if --mode
	// was also explicitly passed on the command line and disagrees, that's
	// a conflicting_overrides configuration error rather than one silently
	// winning over the other.
	if flagConfigPath != "" && modeFlagExplicit(rootCmd.Flags()) &&
		cfg.StrategyOverride != minifyconfig.OverrideAuto &&
		modeOverride != minifyconfig.OverrideAuto &&
		modeOverride != cfg.StrategyOverride {
		return cfg, turboresult.ConfigurationError("conflicting_overrides")
	}

	if modeFlagExplicit(rootCmd.Flags()) || cfg.StrategyOverride == "" {
		cfg.StrategyOverride = modeOverride
	}
	return cfg, nil
}

// modeFlagExplicit reports whether --mode was actually passed on the
// command line, as opposed to sitting at its "auto" default -- the
// distinction a config-file strategy_override needs to detect a genuine
// conflict rather than a flag the user never touched.
func modeFlagExplicit(fs *flag.FlagSet) bool {
	return fs.Changed("mode")
}

func overrideForMode(mode string) (minifyconfig.StrategyOverride, error) {
	switch mode {
	case "auto", "":
		return minifyconfig.OverrideAuto, nil
	case "scalar":
		return minifyconfig.OverrideScalar, nil
	case "simd":
		return minifyconfig.OverrideSIMD, nil
	case "parallel":
		return minifyconfig.OverrideChunkParallel, nil
	case "streaming":
		return minifyconfig.OverrideStreaming, nil
	default:
		return "", turboresult.ConfigurationError("invalid_configuration")
	}
}

func runMinify(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	var input []byte
	if len(args) >= 1 {
		input, err = os.ReadFile(args[0])
		if err != nil {
			return turboresult.IOError("io_read", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return turboresult.IOError("io_read", err)
		}
	}

	var out io.Writer = os.Stdout
	if len(args) == 2 {
		f, ferr := os.Create(args[1])
		if ferr != nil {
			return turboresult.IOError("io_write", ferr)
		}
		defer f.Close()
		out = f
	}

	if cfg.StrategyOverride == minifyconfig.OverrideStreaming {
		stats, serr := turbomin.MinifyStream(bytes.NewReader(input), out, cfg)
		if serr != nil {
			return serr
		}
		if flagStats {
			printStreamStats(stats)
		}
		return nil
	}

	result, merr := turbomin.Minify(input, cfg)
	if merr != nil {
		return merr
	}
	if _, werr := out.Write(result.Output); werr != nil {
		return turboresult.IOError("io_write", werr)
	}
	if flagStats {
		printStats(result)
	}
	return nil
}

func printStats(r turboresult.Result) {
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "strategy=%s input_bytes=%d output_bytes=%d ratio=%.4f duration_us=%d estimated_mbps=%.1f\n",
		r.StrategyUsed, r.InputSize, r.OutputSize, r.CompressionRatio, r.DurationMicros, r.EstimatedThroughput)
}

func printStreamStats(s turbomin.StreamStats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "strategy=streaming total_in=%d total_out=%d\n", s.TotalIn, s.TotalOut)
}

func exitCodeFor(err error) int {
	if te, ok := err.(*turboresult.TurboError); ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n", te)
		return te.Category.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 4
}
