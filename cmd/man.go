/*
Copyright © 2023 sanix-darker <s4nixd@gmail.com>
*/
package cmd

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

// manCmd generates a roff man page for reviewbot on stdout.
var manCmd = &cobra.Command{
	Use:    "man",
	Short:  "Generate the reviewbot man page.",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		manPage = manPage.WithSection("Copyright", "Copyright © 2023 sanix-darker <s4nixd@gmail.com>")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manCmd)
}
