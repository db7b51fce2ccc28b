package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		EmbedModel:              "nomic-embed-text",
		MainModel:               "llama3.1",
		SQLModel:                "sqlcoder",
		ContextSize:             8192,
		CurrentTemperature:      0.3,
		ChatMaxMessages:         20,
		AssistantMaxMessageSize: 500,
		NumberOfResults:         8,
		CorpusPath:              "./corpus",
		CollectionName:          "rag_collection",
		OllamaHost:              "http://localhost:11434",
		PostgresHost:            "localhost",
		PostgresPort:            5432,
		PostgresUser:            "ragline",
		PostgresDBName:          "ragline",
		PostgresSSLMode:         "disable",
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty embed model", func(c *Config) { c.EmbedModel = "" }, ErrInvalidModel},
		{"empty main model", func(c *Config) { c.MainModel = "" }, ErrInvalidModel},
		{"empty sql model", func(c *Config) { c.SQLModel = "" }, ErrInvalidModel},
		{"negative temperature", func(c *Config) { c.CurrentTemperature = -0.1 }, ErrInvalidTemperature},
		{"temperature too high", func(c *Config) { c.CurrentTemperature = 2.5 }, ErrInvalidTemperature},
		{"context too small", func(c *Config) { c.ContextSize = 100 }, ErrInvalidContextSize},
		{"odd chat max messages", func(c *Config) { c.ChatMaxMessages = 7 }, ErrInvalidChatMaxMessages},
		{"zero chat max messages", func(c *Config) { c.ChatMaxMessages = 0 }, ErrInvalidChatMaxMessages},
		{"zero assistant message size", func(c *Config) { c.AssistantMaxMessageSize = 0 }, ErrInvalidAssistantMessageSize},
		{"zero results", func(c *Config) { c.NumberOfResults = 0 }, ErrInvalidResultCount},
		{"uppercase collection", func(c *Config) { c.CollectionName = "RAG" }, ErrInvalidCollectionName},
		{"collection leading digit", func(c *Config) { c.CollectionName = "1rag" }, ErrInvalidCollectionName},
		{"collection pg_ prefix", func(c *Config) { c.CollectionName = "pg_docs" }, ErrInvalidCollectionName},
		{"relative ollama host", func(c *Config) { c.OllamaHost = "localhost:11434" }, ErrInvalidOllamaHost},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgres},
		{"postgres port out of range", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestConnString(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "secret"

	got := cfg.ConnString()
	assert.Contains(t, got, "host=localhost")
	assert.Contains(t, got, "port=5432")
	assert.Contains(t, got, "password=secret")
	assert.Contains(t, got, "sslmode=disable")
}

func TestReadOnlyConnString(t *testing.T) {
	got := validConfig().ReadOnlyConnString()
	assert.Contains(t, got, "default_transaction_read_only=on")
}

func TestValidCollectionName(t *testing.T) {
	assert.True(t, validCollectionName("rag_collection"))
	assert.True(t, validCollectionName("docs2"))
	assert.False(t, validCollectionName(""))
	assert.False(t, validCollectionName("has space"))
	assert.False(t, validCollectionName("semi;colon"))
}
