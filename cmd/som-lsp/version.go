package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CWBudde/go-som-lsp/internal/lsp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "som-lsp version %s\n", lsp.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
