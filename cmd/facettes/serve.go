package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"facettes/internal/metrics"
	"facettes/internal/version"
)

var (
	serveAddr string
	servePath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics and a health check",
	Long: `Serve the Prometheus registry and /healthz until interrupted.

Analysis runs are not exposed over HTTP; use 'facettes run --metrics' to
expose the counters of a run while it is in progress.`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: metrics.addr from config)")
	serveCmd.Flags().StringVar(&servePath, "path", "", "Metrics path (default: metrics.path from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	env := mustGetEnv()

	addr := env.cfg.Metrics.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	path := env.cfg.Metrics.Path
	if servePath != "" {
		path = servePath
	}

	fmt.Printf("facettes %s serving %s and /healthz on %s\n", version.Info(), path, addr)
	if err := metrics.Serve(cmd.Context(), addr, path, env.logger); err != nil {
		exitWithError(err)
	}
}
