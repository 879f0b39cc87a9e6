package main

import (
	"os"

	"github.com/sol-strategies/geth-launch-config/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
