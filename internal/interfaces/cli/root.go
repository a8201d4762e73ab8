// Package cli implements the shelfctl command tree. Every command talks to
// a running apiserver through the pkg/client SDK; nothing here touches the
// stores directly.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfswap/shelfswap/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// rootOptions holds the global CLI flags.
type rootOptions struct {
	serverAddr string
	timeout    time.Duration
	pretty     bool
}

// NewRootCommand creates the shelfctl root command with all subcommands
// attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "ShelfSwap valuation and analytics CLI",
		Long:          "shelfctl queries a running ShelfSwap engine for book valuations, trend analyses, journeys, and discussion summaries.",
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.serverAddr, "server", "http://localhost:8080", "base URL of the apiserver")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", true, "indent JSON output")

	root.AddCommand(
		newAnalyticsCommand(opts),
		newTrendCommand(opts),
		newJourneyCommand(opts),
		newDiscussionsCommand(opts),
		newValueCommand(opts),
		newRevalueCommand(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClient constructs the SDK client from the global flags.
func (o *rootOptions) newClient() (*client.Client, error) {
	return client.NewClient(o.serverAddr)
}

// printJSON renders a result to stdout.
func (o *rootOptions) printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
