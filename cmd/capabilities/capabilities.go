// SPDX-License-Identifier: BSD-3-Clause

// Package capabilities is a subcommand of the root command. It prints the
// CPU capability probe used to select a minification strategy.
package capabilities

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"turbomin/internal/capability"
)

const cmdName = "capabilities"

var flagJSON bool

// Cmd reports the detected vector widths, feature flags, and topology this
// host would use to pick a minify strategy.
var Cmd = &cobra.Command{
	Use:     cmdName,
	Aliases: []string{"caps"},
	Short:   "Print detected CPU capabilities",
	Example: fmt.Sprintf("  $ %s", cmdName),
	Args:    cobra.NoArgs,
	RunE:    run,
}

func init() {
	Cmd.Flags().BoolVar(&flagJSON, "json", false, "print as JSON")
}

func run(cmd *cobra.Command, args []string) error {
	rec := capability.Probe()

	if flagJSON {
		widths := rec.VectorWidths.ToSlice()
		sort.Slice(widths, func(i, j int) bool { return widths[i] < widths[j] })
		payload := struct {
			VectorWidths []capability.VectorWidth `json:"vector_widths"`
			BestWidth    capability.VectorWidth   `json:"best_width"`
			Features     []string                 `json:"features"`
			LogicalCores int                      `json:"logical_cores"`
			NUMANodes    int                      `json:"numa_nodes"`
		}{
			VectorWidths: widths,
			BestWidth:    rec.BestWidth(),
			Features:     rec.Features.ToSlice(),
			LogicalCores: rec.LogicalCores,
			NUMANodes:    rec.NUMANodes,
		}
		sort.Strings(payload.Features)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("logical_cores: %d\n", rec.LogicalCores)
	fmt.Printf("numa_nodes:    %d\n", rec.NUMANodes)
	fmt.Printf("best_width:    %d\n", rec.BestWidth())
	fmt.Printf("vector_widths: %v\n", rec.VectorWidths.ToSlice())
	features := rec.Features.ToSlice()
	sort.Strings(features)
	fmt.Printf("features:      %v\n", features)
	return nil
}
