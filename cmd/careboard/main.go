package main

import (
	"os"

	"github.com/careboard/careboard/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
