// Rundown Core - broadcast rundown execution engine
//
// This is the main entry point. `rundown serve` runs a playout session over
// the configured rundown; `check` and `resolve` inspect rundown files
// offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of tests.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rundown",
		Short:         "Broadcast rundown execution engine",
		Long:          "rundown drives a live show from its rundown: LIVE/PREVIEW pointers, auto-advance, overlays and audio actuators.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newResolveCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rundown %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
