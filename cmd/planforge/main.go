// Package main is the entry point for the planforge CLI.
package main

import (
	"os"

	"github.com/mpriess/planforge/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
