// Package main provides the entry point for the filesift CLI.
package main

import (
	"os"

	"github.com/filesift/filesift/cmd/filesift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
