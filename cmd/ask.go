package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragline/ragline/internal/chat"
	"github.com/ragline/ragline/internal/ollama"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question with retrieval-augmented generation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client := ollama.New(cfg.OllamaHost, logger)

	pool, store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	retriever := newRetriever(client, store, cfg, logger)

	return chat.OneShot(ctx, client, retriever,
		chat.Config{
			Model:                   cfg.MainModel,
			ContextSize:             cfg.ContextSize,
			Temperature:             cfg.CurrentTemperature,
			AssistantMaxMessageSize: cfg.AssistantMaxMessageSize,
		},
		cfg.NumberOfResults, strings.Join(args, " "), os.Stdout, logger,
	)
}
