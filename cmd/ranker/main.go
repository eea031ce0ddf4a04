package main

import (
	"os"

	"github.com/yarin-claude-code/stocks/cmd/ranker/commands"
)

// main is the entry point for the ranker CLI
// ⭐ Single CLI entry point: go run ./cmd/ranker [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
