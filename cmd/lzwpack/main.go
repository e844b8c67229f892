// Package main provides the lzwpack CLI tool for compressing streams and
// managing packed data directories.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
