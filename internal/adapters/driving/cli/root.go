// Package cli wires the cobra command tree for the prdocs binary.
package cli

import (
	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "prdocs",
	Short: "Generate and publish Google Docs summaries for GitHub pull requests",
	Long: `prdocs serves an HTTP API that fetches a GitHub pull request diff,
generates a technical summary with an AI provider, and publishes the
result to Google Drive as a native Google Doc.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
