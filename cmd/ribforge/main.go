package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/ribforge/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ribforge: %v\n", err)
		os.Exit(1)
	}
}
