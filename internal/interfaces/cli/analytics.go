package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newAnalyticsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <book-id>",
		Short: "Fetch the combined analytics overview for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			out, err := c.Analytics(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printJSON(out)
		},
	}
}

func newTrendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trend <book-id>",
		Short: "Fetch the 6-month point-offer trend for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			out, err := c.Trend(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printJSON(out)
		},
	}
}

func newJourneyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "journey <book-id>",
		Short: "Fetch the provenance timeline for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			out, err := c.Journey(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printJSON(out)
		},
	}
}

func newDiscussionsCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "discussions <book-id>",
		Short: "Fetch the ranked discussion summary for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			out, err := c.Discussions(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return opts.printJSON(out)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum threads to return (0 = server default)")
	return cmd
}
