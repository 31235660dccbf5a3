package main

import (
	"os"

	"insighthub/cmd/insighthubctl/commands"
)

var version = "dev"

func main() {
	// Errors are printed by the printer package.
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
