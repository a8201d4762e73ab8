package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newValueCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "value <book-id>",
		Short: "Compute a fresh point value without persisting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			out, err := c.Value(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printJSON(out)
		},
	}
}

func newRevalueCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revalue <book-id>",
		Short: "Compute, persist, and announce a fresh point value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			out, err := c.Revalue(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printJSON(out)
		},
	}
}
