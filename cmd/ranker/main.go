package main

import (
	"os"

	"github.com/dmehra/niftyrank/cmd/ranker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
