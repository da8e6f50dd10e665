// Package main provides the pqdeps command.
package main

import (
	"os"

	"github.com/leapstack-labs/pqdeps/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
