// Package commands wires the splitledger CLI.
package commands

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	root := &cobra.Command{
		Use:   "splitledger",
		Short: "Shared expense ledger with optimal debt settlement",
	}

	root.AddCommand(serveCmd())
	return root.Execute()
}
