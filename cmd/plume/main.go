// Package main is the entry point for the plume CLI tool.
package main

import (
	"os"

	"github.com/plumenote/plume/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
