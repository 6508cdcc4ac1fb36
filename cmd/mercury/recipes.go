package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecipesCmd(cli *cliContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:     "recipes",
		Short:   "List the recipes saved in the SQLite store",
		Example: `  mercury recipes --db ./mercury.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer cli.closeStore()
			st, err := cli.store(dbPath)
			if err != nil {
				return err
			}
			names, err := st.RecipeNames(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "no recipes stored, import some with mercury seed --recipe name=location")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to DB_PATH)")
	return cmd
}
