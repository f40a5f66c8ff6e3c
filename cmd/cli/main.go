package main

import (
	"os"

	"github.com/JaxylViernes/wp-seo-autopilot/cmd/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
