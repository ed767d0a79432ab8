package main

import (
	"os"

	"github.com/voltlab/battsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
