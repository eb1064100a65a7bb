// Package main is the entry point for the prism-shell host shell.
package main

import (
	"os"

	"github.com/prism-io/prism-shell/internal/shell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
