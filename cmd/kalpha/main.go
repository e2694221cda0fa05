package main

import (
	"os"

	"github.com/okian/kalpha/cmd/kalpha/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
