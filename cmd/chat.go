package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ragline/ragline/internal/chat"
	"github.com/ragline/ragline/internal/ollama"
	"github.com/ragline/ragline/internal/tools"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive tool-using chat",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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
	registry := newRegistry(retriever, cfg, logger)
	dispatcher := tools.NewDispatcher(registry, logger)

	session := chat.NewSession(
		chat.Config{
			Model:                   cfg.MainModel,
			ContextSize:             cfg.ContextSize,
			Temperature:             cfg.CurrentTemperature,
			AssistantMaxMessageSize: cfg.AssistantMaxMessageSize,
		},
		client, registry, dispatcher,
		chat.NewMemory(cfg.ChatMaxMessages),
		os.Stdin, os.Stdout, logger,
	)

	return session.Run(ctx)
}
