package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "newsgraph",
	Short: "Article knowledge graph with retrieval-augmented answers",
	Long: `newsgraph stores news articles as a labelled knowledge graph, links
related articles by taxonomy overlap, and answers questions over the stored
articles with multi-strategy retrieval.

The graph lives in memory and persists through snapshots (file, sqlite, or
postgres, per STORAGE_DRIVER). Run serve for the HTTP API, or use the other
subcommands for one-shot operations against the saved snapshot.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
