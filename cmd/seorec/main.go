// Package main provides the entry point for the seorec CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/seorec/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
