// Package config provides application configuration with multi-source priority.
//
// Sources, highest to lowest:
//  1. Environment variables (RAGLINE_* prefix)
//  2. Config file (~/.ragline/config.yaml, or ./config.yaml)
//  3. Defaults
//
// Validation happens eagerly in Load; an invalid configuration is fatal at
// startup and the process never reaches a model or database call.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation, checkable with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModel indicates a model name is empty or malformed.
	ErrInvalidModel = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidContextSize indicates the context window size is out of range.
	ErrInvalidContextSize = errors.New("invalid context size")

	// ErrInvalidChatMaxMessages indicates the history bound is invalid.
	ErrInvalidChatMaxMessages = errors.New("invalid chat max messages")

	// ErrInvalidAssistantMessageSize indicates the stored-message cap is
	// invalid.
	ErrInvalidAssistantMessageSize = errors.New("invalid assistant max message size")

	// ErrInvalidResultCount indicates the retrieval result count is invalid.
	ErrInvalidResultCount = errors.New("invalid number of results")

	// ErrInvalidCollectionName indicates the collection name is unusable
	// as a Postgres table name.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrInvalidOllamaHost indicates the Ollama host URL is invalid.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")

	// ErrInvalidPostgres indicates a Postgres connection setting is invalid.
	ErrInvalidPostgres = errors.New("invalid PostgreSQL setting")
)

// Config stores all application settings.
type Config struct {
	// Model selection
	EmbedModel string `mapstructure:"embed_model"` // embedding model (e.g. "nomic-embed-text")
	MainModel  string `mapstructure:"main_model"`  // answer generation model
	SQLModel   string `mapstructure:"sql_model"`   // NL-to-SQL model for dbchat

	// Generation options
	ContextSize        int     `mapstructure:"context_size"`
	CurrentTemperature float64 `mapstructure:"current_temperature"`

	// Conversation bounds
	ChatMaxMessages         int `mapstructure:"chat_max_messages"`
	AssistantMaxMessageSize int `mapstructure:"assistant_max_message_size"`

	// Retrieval
	NumberOfResults int    `mapstructure:"number_of_results"`
	CorpusPath      string `mapstructure:"corpus_path"`
	CollectionName  string `mapstructure:"collection_name"`

	// Ollama endpoint
	OllamaHost string `mapstructure:"ollama_host"`

	// PostgreSQL connection (vector store and dbchat)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".ragline")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("RAGLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("config file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("embed_model", "nomic-embed-text")
	v.SetDefault("main_model", "llama3.1")
	v.SetDefault("sql_model", "sqlcoder")
	v.SetDefault("context_size", 8192)
	v.SetDefault("current_temperature", 0.3)
	v.SetDefault("chat_max_messages", 20)
	v.SetDefault("assistant_max_message_size", 500)
	v.SetDefault("number_of_results", 8)
	v.SetDefault("corpus_path", "./corpus")
	v.SetDefault("collection_name", "rag_collection")
	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "ragline")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "ragline")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// ConnString builds a pgx connection string from the Postgres settings.
func (c *Config) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword,
		c.PostgresDBName, c.PostgresSSLMode)
}

// DatabaseURL builds a postgres:// URL for tooling that requires URL form,
// such as the migration runner.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ReadOnlyConnString builds a connection string whose sessions default to
// read-only transactions. dbchat executes model-generated SQL through this.
func (c *Config) ReadOnlyConnString() string {
	return c.ConnString() + " options='-c default_transaction_read_only=on'"
}
