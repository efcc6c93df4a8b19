// ABOUTME: Entry point for the mbank CLI
// ABOUTME: Command-line and terminal UI client for the mobile banking API

package main

import (
	"fmt"
	"os"

	"github.com/dtv/mbank-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
