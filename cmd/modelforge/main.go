package main

import (
	"os"

	"github.com/Brandon7CC/MODELFORGE/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
