// Package chat drives the interactive tool-using conversation loop: read a
// query, let the model pick tools, execute them, stream the final answer,
// and fold the turn into bounded conversation memory.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/ollama"
	"github.com/ragline/ragline/internal/tools"
)

// minInputLength is the shortest accepted user query. Shorter input is
// rejected inline and the loop re-prompts without losing memory.
const minInputLength = 3

const separator = "=============================="

// Generator is the language-model gateway the session drives. Satisfied by
// *ollama.Client.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (*ollama.GenerateResponse, error)
	Stream(ctx context.Context, req ollama.GenerateRequest, fn func(ollama.GenerateResponse) error) error
}

// Executor runs a sanitized batch of tool calls. Satisfied by
// *tools.Dispatcher.
type Executor interface {
	Execute(ctx context.Context, sanitized string) []string
}

// Config carries the session's model settings.
type Config struct {
	Model                   string
	ContextSize             int
	Temperature             float64
	AssistantMaxMessageSize int
}

// Session is the per-process chat orchestrator. One turn runs to completion
// before the next line of input is read; nothing interleaves.
type Session struct {
	cfg        Config
	gen        Generator
	registry   *tools.Registry
	dispatcher Executor
	memory     *Memory
	in         io.Reader
	out        io.Writer
	logger     log.Logger
}

// NewSession wires a Session. in is the user's input stream, out the
// transcript.
func NewSession(cfg Config, gen Generator, registry *tools.Registry, dispatcher Executor,
	memory *Memory, in io.Reader, out io.Writer, logger log.Logger,
) *Session {
	return &Session{
		cfg:        cfg,
		gen:        gen,
		registry:   registry,
		dispatcher: dispatcher,
		memory:     memory,
		in:         in,
		out:        out,
		logger:     logger,
	}
}

// Run loops over turns until the input stream ends or ctx is cancelled.
// A failed turn never ends the loop; the next prompt always starts fresh.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "You can use these tools:")
	for _, name := range s.registry.Names() {
		fmt.Fprintln(s.out, name)
	}
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

// Turn executes one full cycle for query: tool selection, tool execution,
// streamed answer, memory update, metrics. All failures degrade to a
// transcript notice; Turn never returns an error because the loop must
// continue regardless.
func (s *Session) Turn(ctx context.Context, query string) {
	if len(strings.TrimSpace(query)) < minInputLength {
		fmt.Fprintf(s.out, "Invalid input. The input must be at least %d characters long.\n", minInputLength)
		return
	}

	started := time.Now()
	fmt.Fprintf(s.out, "Question:\n%s\n\n", query)

	toolResults := s.selectAndRunTools(ctx, query)
	s.generateAnswer(ctx, query, toolResults)

	fmt.Fprintf(s.out, "Execution Time: %s\n", FormatDuration(time.Since(started).Nanoseconds()))
	fmt.Fprintln(s.out, separator)
}

// selectAndRunTools asks the model which tools to call and executes them.
// A model failure here means "no tools", not a failed turn.
func (s *Session) selectAndRunTools(ctx context.Context, query string) []string {
	prompt := ToolSelectionPrompt(s.registry.DescriptorsJSON(), tools.ResponseFormatJSON(), query)

	resp, err := s.gen.Generate(ctx, ollama.GenerateRequest{
		Model:  s.cfg.Model,
		System: ToolSelectionSystem,
		Prompt: prompt,
		Format: "json",
		Options: &ollama.Options{
			NumCtx:      s.cfg.ContextSize,
			Temperature: s.cfg.Temperature,
		},
	})
	if err != nil {
		s.logger.Warn("tool selection failed, proceeding without tools", "error", err)
		return nil
	}

	cleaned := tools.Sanitize(resp.Response)
	fmt.Fprintf(s.out, "I've decided to use the tool(s):\n%s\n\n", cleaned)

	return s.dispatcher.Execute(ctx, cleaned)
}

// generateAnswer streams the final answer, storing a bounded copy for
// memory. The live transcript is never truncated; only the stored message
// is capped at AssistantMaxMessageSize increments.
func (s *Session) generateAnswer(ctx context.Context, query string, toolResults []string) {
	prompt := AnswerPrompt(s.memory.Snapshot(), toolResults, query)

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
	s.printMetrics(final)
}

func (s *Session) printMetrics(final ollama.GenerateResponse) {
	fmt.Fprintf(s.out, "\n\n%s\n", separator)
	fmt.Fprintf(s.out, "Prompt Tokens: %d\n", final.PromptEvalCount)
	fmt.Fprintf(s.out, "Response Tokens: %d\n", final.EvalCount)
	fmt.Fprintf(s.out, "Loading the Model Time: %s\n", FormatDuration(final.LoadDuration))
	fmt.Fprintf(s.out, "Prompt Evaluation Time: %s\n", FormatDuration(final.PromptEvalDuration))
	fmt.Fprintf(s.out, "Response Time: %s\n", FormatDuration(final.TotalDuration))
}
