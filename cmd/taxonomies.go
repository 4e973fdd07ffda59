package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var taxonomiesCmd = &cobra.Command{
	Use:   "taxonomies",
	Short: "List registered taxonomy dictionaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := initTaxonomies()
		if err != nil {
			return err
		}
		for _, name := range registry.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxonomiesCmd)
}
