// Package main provides the entry point for the searchd server.
package main

import (
	"os"

	"github.com/solosuccess/searchd/cmd/searchd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
