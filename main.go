package main

import (
	"os"

	"github.com/systemlogs/folio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
