package main

import (
	"fmt"
	"os"

	"rolechain/cmd/rolechain/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
