package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON HTTP API for babies, scans, summaries and exports.
Prometheus metrics are served on /metrics.

The listen address comes from --addr, else listen_addr in config.yaml or
BABYSCAN_LISTEN_ADDR.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runServer(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runServer(ctx context.Context) error {
	svc, publisher, err := newScanService(ctx, settings)
	if err != nil {
		return err
	}
	defer publisher.Close()

	server, err := api.NewServer(store, svc, api.Options{Logger: logger})
	if err != nil {
		return err
	}

	addr := settings.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	fmt.Printf("%s Listening on %s (detector: %s)\n", green("✓"), cyan(addr), settings.Detector)
	fmt.Printf("%s\n", gray("Press Ctrl+C to stop"))

	if err := server.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	fmt.Printf("\n%s Server stopped\n", gray("→"))
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: configured listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
