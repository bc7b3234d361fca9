package cmd

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/dmarkhas/templua"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate that every discovered template compiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, fsys := newCatalog()
		descs, err := cat.Discover(cmd.Context())
		if err != nil {
			return err
		}
		compiler := templua.NewCompiler()
		failed := 0
		for _, d := range descs {
			data, err := fs.ReadFile(fsys, d.ScriptPath)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", d.Name, err)
				failed++
				continue
			}
			if err := compiler.Check(string(data)); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", d.Name, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK   %s\n", d.Name)
		}
		if failed > 0 {
			return fmt.Errorf("%d template(s) failed to compile", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
