package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ragline/ragline/internal/ingest"
	"github.com/ragline/ragline/internal/ollama"
)

var embedRate float64

var embedCmd = &cobra.Command{
	Use:   "embed [corpus-dir]",
	Short: "Re-embed the corpus into the vector store",
	Long: `embed resets the configured collection and ingests every .txt and .md
file under the corpus directory. The directory defaults to corpus_path
from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().Float64Var(&embedRate, "rate", 0, "max embedding calls per second (0 = unlimited)")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	dir := cfg.CorpusPath
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no corpus directory: pass one or set corpus_path")
	}

	client := ollama.New(cfg.OllamaHost, logger)

	pool, store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	ing := ingest.New(client, store, cfg.EmbedModel, embedRate, os.Stdout, logger)
	if err := ing.Run(ctx, dir); err != nil {
		return err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Collection %q now holds %d chunks.\n", cfg.CollectionName, count)
	return nil
}
