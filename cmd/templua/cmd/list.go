package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the templates the catalog discovers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _ := newCatalog()
		descs, err := cat.Discover(cmd.Context())
		if err != nil {
			return err
		}
		if len(descs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no templates found")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCAPTION\tSHORTCUT\tSUBMENU")
		for _, d := range descs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Caption(), d.Shortcut(), d.Settings.Submenu())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
