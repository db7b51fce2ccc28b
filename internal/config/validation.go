package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks all configuration values. It returns sentinel errors
// wrapped with detail, checkable with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.EmbedModel == "" {
		return fmt.Errorf("%w: embed_model cannot be empty", ErrInvalidModel)
	}
	if c.MainModel == "" {
		return fmt.Errorf("%w: main_model cannot be empty", ErrInvalidModel)
	}
	if c.SQLModel == "" {
		return fmt.Errorf("%w: sql_model cannot be empty", ErrInvalidModel)
	}

	// Ollama accepts 0.0 (deterministic) through 2.0.
	if c.CurrentTemperature < 0.0 || c.CurrentTemperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f",
			ErrInvalidTemperature, c.CurrentTemperature)
	}

	if c.ContextSize < 512 || c.ContextSize > 1<<20 {
		return fmt.Errorf("%w: must be between 512 and 1,048,576, got %d",
			ErrInvalidContextSize, c.ContextSize)
	}

	// The history is evicted in user/assistant pairs, so the bound must be
	// an even number of at least one full turn.
	if c.ChatMaxMessages < 2 || c.ChatMaxMessages%2 != 0 {
		return fmt.Errorf("%w: must be an even number >= 2, got %d",
			ErrInvalidChatMaxMessages, c.ChatMaxMessages)
	}

	if c.AssistantMaxMessageSize < 1 {
		return fmt.Errorf("%w: must be positive, got %d",
			ErrInvalidAssistantMessageSize, c.AssistantMaxMessageSize)
	}

	if c.NumberOfResults < 1 || c.NumberOfResults > 100 {
		return fmt.Errorf("%w: must be between 1 and 100, got %d",
			ErrInvalidResultCount, c.NumberOfResults)
	}

	if !validCollectionName(c.CollectionName) {
		return fmt.Errorf("%w: %q must match [a-z_][a-z0-9_]*",
			ErrInvalidCollectionName, c.CollectionName)
	}

	u, err := url.Parse(c.OllamaHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidOllamaHost, c.OllamaHost)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgres)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d",
			ErrInvalidPostgres, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgres)
	}

	return nil
}

// validCollectionName reports whether name is a lowercase Postgres-style
// identifier. The store only ever binds the collection as a parameter, but
// keeping names to this shape means every collection is portable to
// identifier positions (per-collection indexes, COPY targets) and catches
// typos like stray whitespace early.
func validCollectionName(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !strings.HasPrefix(name, "pg_")
}
