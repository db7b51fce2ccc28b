package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ragline/ragline/internal/log"
)

// Dispatcher validates tool-call requests against the registry and executes
// them. One tool's failure never aborts its siblings, and a parse failure
// yields zero calls rather than an error: the orchestrator always proceeds
// to answer generation with whatever results exist.
type Dispatcher struct {
	registry *Registry
	logger   log.Logger
}

// NewDispatcher creates a Dispatcher over registry.
func NewDispatcher(registry *Registry, logger log.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// Execute parses sanitized model output and runs every resolvable call.
// Results come back in the original request order regardless of which call
// finishes first; unknown function names are skipped with a log line.
func (d *Dispatcher) Execute(ctx context.Context, sanitized string) []string {
	requests, ok := d.parse(sanitized)
	if !ok {
		return nil
	}

	// Resolve first so unknown names are handled at the boundary and the
	// result slice maps 1:1 onto resolved calls in request order.
	type resolved struct {
		req  Request
		tool Tool
	}
	var calls []resolved
	for _, req := range requests {
		tool, found := d.registry.Lookup(req.FunctionName)
		if !found {
			// Models hallucinate tool names; proceed with the subset
			// that resolved.
			d.logger.Warn("skipping unknown tool", "tool", req.FunctionName)
			continue
		}
		calls = append(calls, resolved{req: req, tool: tool})
	}
	if len(calls) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	results := make([]string, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.logger.Info("invoking tool",
				"batch", batchID, "tool", call.req.FunctionName, "index", i)
			results[i] = d.run(ctx, call.tool, call.req)
		}()
	}
	wg.Wait()

	return results
}

// parse decodes sanitized text into requests. A bare object is coerced into
// a one-element batch; anything else unparseable means "no tools requested".
func (d *Dispatcher) parse(sanitized string) ([]Request, bool) {
	var requests []Request
	if err := json.Unmarshal([]byte(sanitized), &requests); err == nil {
		return requests, true
	}

	var single Request
	if err := json.Unmarshal([]byte(sanitized), &single); err == nil && single.FunctionName != "" {
		return []Request{single}, true
	}

	d.logger.Warn("unparseable tool response, proceeding without tools",
		"response_len", len(sanitized))
	return nil, false
}

// run executes one call, converting every failure mode, error return or
// panic, into a result string.
func (d *Dispatcher) run(ctx context.Context, tool Tool, req Request) (result string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panicked", "tool", req.FunctionName, "panic", r)
			result = fmt.Sprintf("The tool %s failed with an internal error.", req.FunctionName)
		}
	}()

	out, err := tool.Execute(ctx, req.Parameters)
	if err != nil {
		d.logger.Error("tool failed", "tool", req.FunctionName, "error", err)
		return fmt.Sprintf("The tool %s returned an error: %v", req.FunctionName, err)
	}
	return out
}
