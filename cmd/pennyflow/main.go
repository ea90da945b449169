package main

import (
	"os"

	"github.com/dkruglov/pennyflow/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
