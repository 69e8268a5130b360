package main

import (
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace catalog and accounts with the sample dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeBackend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer closeBackend()

		return loadSeed(cmd.Context(), b)
	},
}
