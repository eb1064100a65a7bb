// Package main is the entry point for the prismctl CLI and dashboard.
package main

import (
	"os"

	"github.com/prism-io/prism-shell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
