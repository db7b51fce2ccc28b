// Package cmd defines the ragline command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragline",
	Short: "ragline - a local retrieval-augmented chat assistant",
	Long: `ragline is a terminal assistant backed by local Ollama models and a
pgvector document store.

Running ragline without a subcommand starts the interactive tool-using
chat. Use "embed" to ingest a corpus, "ask" for a one-shot
retrieval-augmented question and "dbchat" to query a Postgres database in
natural language.`,
	RunE: runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
