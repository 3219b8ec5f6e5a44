// Package main is the entry point for the molubot CLI.
package main

import (
	"os"

	"github.com/molubot/molubot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
