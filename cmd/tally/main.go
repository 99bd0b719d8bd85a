// ABOUTME: Entry point for the tally binary.
// ABOUTME: Executes the root Cobra command and exits 1 on any returned error.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
