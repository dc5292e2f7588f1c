package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "hearthd",
	Short: "hearthd is a self-hosted home dashboard",
	Long: `A self-hosted home dashboard backend: authenticated REST API,
real-time push channel, and an embedded web UI.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
