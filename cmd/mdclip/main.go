// Package main is the entry point for the mdclip CLI.
package main

import (
	"os"

	"github.com/jmylchreest/mdclip/cmd/mdclip/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
