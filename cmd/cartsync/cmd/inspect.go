package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/cartsync/pkg/logger"
)

func inspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <page.html>",
		Short: "List the cart widgets and line items found in a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			page, err := loadPage(args[0], nil, logger.Discard())
			if err != nil {
				return err
			}
			if asJSON {
				return outputJSON(c.OutOrStdout(), page.Widgets())
			}
			return printWidgetTable(c.OutOrStdout(), page.Widgets())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print widgets as JSON")
	return cmd
}
