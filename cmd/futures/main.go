package main

import (
	"os"

	"github.com/rustyeddy/futures/cmd/futures/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
