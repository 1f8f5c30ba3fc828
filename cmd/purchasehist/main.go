// Package main is the entry point for the purchasehist CLI.
package main

import (
	"os"

	"github.com/jmylchreest/purchasehist/cmd/purchasehist/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
