package main

import (
	"os"

	"github.com/relkit/relkit/cmd/cli"
)

// main executes the relkit command-line application.
func main() {
	os.Exit(cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
