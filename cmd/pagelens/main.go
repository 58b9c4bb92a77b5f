// Package main is the entry point for the pagelens CLI binary.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/pagelens/pagelens/cmd/pagelens/commands"
)

func main() {
	// Load .env file (ignore error if not found)
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
