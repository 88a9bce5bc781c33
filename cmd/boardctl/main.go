package main

import (
	"fmt"
	"os"
)

// Exit codes for the CLI.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(exitConfig)
	}
	if err := newRootCmd(config).Execute(); err != nil {
		os.Exit(exitRuntime)
	}
	os.Exit(exitOK)
}
