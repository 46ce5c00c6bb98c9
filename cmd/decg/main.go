package main

import (
	"os"

	"github.com/decg-project/decg/internal/cli"
	"github.com/decg-project/decg/internal/cli/shared"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(shared.ExitCode(err))
	}
}
