package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/ragline/ragline/internal/chat"
	"github.com/ragline/ragline/internal/dbchat"
	"github.com/ragline/ragline/internal/ollama"
)

var dbchatCmd = &cobra.Command{
	Use:   "dbchat",
	Short: "Query the configured Postgres database in natural language",
	Long: `dbchat lets the SQL model translate questions into SELECT statements
over the public schema. Generated statements run in a read-only session
and anything that is not a single SELECT is rejected.`,
	RunE: runDBChat,
}

func init() {
	rootCmd.AddCommand(dbchatCmd)
}

func runDBChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client := ollama.New(cfg.OllamaHost, logger)

	// Model-generated SQL only ever sees a read-only session.
	pool, err := pgxpool.New(ctx, cfg.ReadOnlyConnString())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging postgres: %w", err)
	}

	session := dbchat.NewSession(
		dbchat.Config{
			Model:                   cfg.MainModel,
			SQLModel:                cfg.SQLModel,
			ContextSize:             cfg.ContextSize,
			Temperature:             cfg.CurrentTemperature,
			AssistantMaxMessageSize: cfg.AssistantMaxMessageSize,
		},
		client, dbchat.NewPGRunner(pool),
		chat.NewMemory(cfg.ChatMaxMessages),
		os.Stdin, os.Stdout, logger,
	)

	return session.Run(ctx)
}
