// Package main is the entry point for the nearby CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/evcraddock/nearby/internal/cli"
	"github.com/evcraddock/nearby/internal/notify"
)

func main() {
	// A missing .env is fine; the config file and defaults still apply.
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		if !notify.WasReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}
