// Command bunim is a package manager for the Nim ecosystem.
package main

import (
	"os"

	"github.com/bung87/bunim/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
