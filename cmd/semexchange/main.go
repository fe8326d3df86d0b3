// Package main provides the semexchange binary: the event-driven semantic
// taxonomy and matching engine of the exchange. It consumes marketplace
// domain events from JetStream, projects them into the RDF-shaped graph
// store, and maintains the taxonomy snapshot the matcher reads.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "semexchange"
	version = "0.1.0"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Semantic taxonomy and matching engine",
		Long: `Semexchange maintains the exchange's offering graph. It consumes
marketplace domain events from NATS JetStream, projects each event into
idempotent graph deltas, keeps the category taxonomy snapshot fresh, and
serves offering discovery from the projected graph.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("%s version %s\n", appName, version)
		},
	})
	return cmd
}
