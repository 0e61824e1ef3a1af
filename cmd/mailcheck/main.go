package main

import (
	"os"

	"github.com/optimode/mailcheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
