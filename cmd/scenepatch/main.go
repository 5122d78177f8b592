package main

import (
	"os"

	"github.com/scenepatch/scenepatch/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
