package main

import (
	"os"

	"github.com/researchpilot/researchpilot/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
