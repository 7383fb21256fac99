package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func quantityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quantity <widget> <item> <value>",
		Short: "Edit a line item quantity",
		Long: "Queues a quantity edit. The server waits for edits to stop before\n" +
			"sending the update, so several calls in quick succession send one request.",
		Example: `  cartctl quantity cart-1 L1 3
  cartctl quantity mini-1 L2 0`,
		Args: cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			if err := newClient().Quantity(c.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Quantity edit for %s in %s queued.\n", args[1], args[0])
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <widget> <item>",
		Short:   "Remove a line item",
		Long:    "Queues a removal. It is dropped if another cart update is still in flight.",
		Example: `  cartctl remove cart-1 L1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := newClient().Remove(c.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Removal of %s from %s queued.\n", args[1], args[0])
			return nil
		},
	}
}

func refreshLockCmd() *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "refresh-lock",
		Short: "Re-render lock state across every widget",
		Example: `  cartctl refresh-lock
  cartctl refresh-lock --exclude mini-1`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if err := newClient().RefreshLock(c.Context(), exclude); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), "Lock-state refresh requested.")
			return nil
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "mini-cart id that manages its own lock state")
	return cmd
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show synchronization state",
		Example: `  cartctl state
  cartctl state --output json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s, err := newClient().State(c.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), s)
			}
			return printState(c.OutOrStdout(), s)
		},
	}
}
