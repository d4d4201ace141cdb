package main

import (
	"os"

	"github.com/splitledger/splitledger/cmd/splitledger/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
