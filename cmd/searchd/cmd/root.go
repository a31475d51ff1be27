// Package cmd provides the CLI commands for searchd.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solosuccess/searchd/pkg/version"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the searchd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchd",
		Short: "Per-user full-text search index service",
		Long: `searchd keeps a per-user search index in sync with business entities
(tasks, contacts, reports, chats, documents) and serves ranked
full-text search over HTTP.

Entity-owning services push writes to /search/index; the UI reads
from /search.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("searchd version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to searchd.yaml")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
