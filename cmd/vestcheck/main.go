package main

import (
	"os"

	"github.com/vestcheck/vestcheck/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
