package dbchat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ragline/ragline/internal/chat"
	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/ollama"
)

const minInputLength = 3

const separator = "=============================="

// Generator is the language-model gateway the session drives. Satisfied by
// *ollama.Client.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (*ollama.GenerateResponse, error)
	Stream(ctx context.Context, req ollama.GenerateRequest, fn func(ollama.GenerateResponse) error) error
}

// Config carries the session's model settings. SQLModel generates the
// statements; Model writes the final answer.
type Config struct {
	Model                   string
	SQLModel                string
	ContextSize             int
	Temperature             float64
	AssistantMaxMessageSize int
}

// Session is the database chat orchestrator. The schema is introspected
// once when Run starts and reused for every turn.
type Session struct {
	cfg    Config
	gen    Generator
	runner SQLRunner
	memory *chat.Memory
	schema []map[string]any
	in     io.Reader
	out    io.Writer
	logger log.Logger
}

// NewSession wires a Session. in is the user's input stream, out the
// transcript.
func NewSession(cfg Config, gen Generator, runner SQLRunner, memory *chat.Memory,
	in io.Reader, out io.Writer, logger log.Logger,
) *Session {
	return &Session{
		cfg:    cfg,
		gen:    gen,
		runner: runner,
		memory: memory,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// Run introspects the schema, then loops over turns until the input stream
// ends or ctx is cancelled. A failed turn never ends the loop.
func (s *Session) Run(ctx context.Context) error {
	schema, err := IntrospectSchema(ctx, s.runner)
	if err != nil {
		return err
	}
	s.schema = schema

	fmt.Fprintln(s.out, "Ask questions about your database.")
	fmt.Fprintln(s.out, separator)

	scanner := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, "You: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil // EOF
		}

		s.Turn(ctx, scanner.Text())
	}
}

// Turn executes one full cycle for query: SQL generation, execution, row
// display, streamed answer, memory update, metrics. Failures degrade to a
// transcript notice so the loop continues.
func (s *Session) Turn(ctx context.Context, query string) {
	if len(strings.TrimSpace(query)) < minInputLength {
		fmt.Fprintf(s.out, "Invalid input. The input must be at least %d characters long.\n", minInputLength)
		return
	}

	started := time.Now()
	fmt.Fprintf(s.out, "Question:\n%s\n\n", query)

	rows, ok := s.generateAndRunSQL(ctx, query)
	if ok {
		s.generateAnswer(ctx, query, rows)
	}

	fmt.Fprintf(s.out, "Execution Time: %s\n", chat.FormatDuration(time.Since(started).Nanoseconds()))
	fmt.Fprintln(s.out, separator)
}

// generateAndRunSQL asks the SQL model for a statement, validates it and
// runs it. The second return is false when the turn cannot proceed to an
// answer.
func (s *Session) generateAndRunSQL(ctx context.Context, query string) ([]map[string]any, bool) {
	resp, err := s.gen.Generate(ctx, ollama.GenerateRequest{
		Model:  s.cfg.SQLModel,
		System: SQLSystem,
		Prompt: SQLPrompt(s.schema, query),
		Options: &ollama.Options{
			NumCtx:      s.cfg.ContextSize,
			Temperature: s.cfg.Temperature,
		},
	})
	if err != nil {
		fmt.Fprintf(s.out, "Failed to generate a SQL query: %v\n", err)
		s.logger.Error("sql generation failed", "error", err)
		return nil, false
	}

	sql := CleanSQL(resp.Response)
	fmt.Fprintf(s.out, "Generated SQL:\n%s\n\n", sql)

	if err := ValidateSelect(sql); err != nil {
		fmt.Fprintf(s.out, "Refusing to run the generated query: %v\n", err)
		s.logger.Warn("generated sql rejected", "error", err, "sql", sql)
		return nil, false
	}

	rows, err := s.runner.Run(ctx, sql)
	if err != nil {
		fmt.Fprintf(s.out, "The query failed: %v\n", err)
		s.logger.Error("query execution failed", "error", err, "sql", sql)
		return nil, false
	}

	fmt.Fprintf(s.out, "Database result:\n%s\n\n", FormatRows(rows, nil))
	return rows, true
}

// generateAnswer streams the final answer over the rows, storing a bounded
// copy for memory the same way the chat session does.
func (s *Session) generateAnswer(ctx context.Context, query string, rows []map[string]any) {
	prompt := AnswerPrompt(s.memory.Snapshot(), query, rows)

	fmt.Fprintln(s.out, "Assistant:")

	var stored strings.Builder
	var increments int
	var final ollama.GenerateResponse

	err := s.gen.Stream(ctx, ollama.GenerateRequest{
		Model:  s.cfg.Model,
		System: AnswerSystem,
		Prompt: prompt,
		Options: &ollama.Options{
			NumCtx:      s.cfg.ContextSize,
			Temperature: s.cfg.Temperature,
		},
	}, func(gr ollama.GenerateResponse) error {
		fmt.Fprint(s.out, gr.Response)
		increments++
		if increments <= s.cfg.AssistantMaxMessageSize {
			stored.WriteString(gr.Response)
		}
		if gr.Done {
			final = gr
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(s.out, "\nFailed to generate a response: %v\n", err)
		s.logger.Error("answer generation failed", "error", err)
		return
	}

	s.memory.AppendTurn(query, stored.String())

	fmt.Fprintf(s.out, "\n\n%s\n", separator)
	fmt.Fprintf(s.out, "Prompt Tokens: %d\n", final.PromptEvalCount)
	fmt.Fprintf(s.out, "Response Tokens: %d\n", final.EvalCount)
	fmt.Fprintf(s.out, "Loading the Model Time: %s\n", chat.FormatDuration(final.LoadDuration))
	fmt.Fprintf(s.out, "Prompt Evaluation Time: %s\n", chat.FormatDuration(final.PromptEvalDuration))
	fmt.Fprintf(s.out, "Response Time: %s\n", chat.FormatDuration(final.TotalDuration))
}
