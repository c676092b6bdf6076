// SPDX-License-Identifier: BSD-3-Clause

// Package telemetry is a subcommand of the root command. It minifies one
// file repeatedly on an interval, serving Prometheus metrics over HTTP
// for as long as the process runs.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"turbomin"
	"turbomin/internal/minifyconfig"
	"turbomin/internal/turboresult"
	"turbomin/internal/turbotelemetry"
)

const cmdName = "telemetry"

var (
	flagListenAddr string
	flagInterval   time.Duration
)

// Cmd repeatedly minifies an input file and exposes Prometheus counters for
// bytes processed, call latency, and errors over HTTP.
var Cmd = &cobra.Command{
	Use:     cmdName,
	Aliases: []string{"telem"},
	Short:   "Serve Prometheus metrics while repeatedly minifying a file",
	Example: fmt.Sprintf("  $ %s --listen :9090 --interval 1s input.json", cmdName),
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func init() {
	Cmd.Flags().StringVar(&flagListenAddr, "listen", ":9090", "address to serve /metrics on")
	Cmd.Flags().DurationVar(&flagInterval, "interval", time.Second, "time between minify calls")
}

func run(cmd *cobra.Command, args []string) error {
	input, err := os.ReadFile(args[0])
	if err != nil {
		return turboresult.IOError("io_read", err)
	}

	reg := turbotelemetry.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	server := &http.Server{Addr: flagListenAddr, Handler: mux}

	go func() {
		slog.Info("serving telemetry", "addr", flagListenAddr)
		if serr := server.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
			slog.Error("telemetry server stopped", "error", serr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := minifyconfig.Defaults()
	ticker := time.NewTicker(flagInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			result, merr := turbomin.Minify(input, cfg)
			if merr != nil {
				reg.ObserveError(merr)
				slog.Warn("minify failed", "error", merr)
				continue
			}
			reg.Observe(result)
		}
	}
}
