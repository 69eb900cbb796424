package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/spf13/cobra"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse and manage published items",
	}

	cmd.AddCommand(newArchiveListCmd())
	cmd.AddCommand(newArchiveRemoveCmd())
	cmd.AddCommand(newArchiveExportCmd())

	return cmd
}

func newArchiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived items, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tPRICE\tTITLE\tREMOTE")
			for _, item := range a.archive.Items() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", item.ID, item.Date, item.Price, item.Title, item.RemoteID)
			}
			return tw.Flush()
		},
	}
}

func newArchiveRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item from the archive",
		Long:  "Removes the item from the local archive only. The Shopify product is left as is.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := a.archive.Get(args[0]); !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "no archived item with id %s\n", args[0])
				return nil
			}
			return a.archive.Remove(cmd.Context(), args[0])
		},
	}
}

func newArchiveExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the archive as JSON, YAML or Parquet",
		Example: `  appraiser archive export --format yaml
  appraiser archive export --format parquet --output archive.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return archive.Export(w, a.archive.Items(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
