// Package tools defines the tool registry, the model-output sanitizer and
// the dispatcher that executes tool-call requests.
//
// A tool is an external capability (retrieval, computation, web fetch,
// weather lookup) the model can request by emitting a JSON array of calls.
// Tool failures never escape the dispatcher: every outcome is a string the
// orchestrator can embed in the next prompt.
package tools

import (
	"context"
	"encoding/json"

	"github.com/ragline/ragline/internal/log"
)

// Params is the free-form parameter mapping attached to a tool call.
type Params map[string]any

// String reads a string parameter, empty when missing or mistyped.
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Descriptor describes one tool to the model. The full set of descriptors
// is serialized into every tool-selection prompt.
type Descriptor struct {
	FunctionName string            `json:"function_name"`
	Parameters   map[string]string `json:"parameters"`
	Description  string            `json:"description"`
}

// Tool pairs a descriptor with its executor. Executors return a result
// string for the answer prompt; parameter problems are reported as
// descriptive result strings, not errors, so the orchestrator always has
// text to work with. An error return means the tool itself failed.
type Tool struct {
	Descriptor Descriptor
	Execute    func(ctx context.Context, params Params) (string, error)
}

// Request is one tool call parsed from sanitized model output. It is
// consumed exactly once by the dispatcher.
type Request struct {
	FunctionName string `json:"function_name"`
	Parameters   Params `json:"parameters"`
}

// Registry is the fixed name-to-tool mapping, defined once at process
// start. Lookup order and descriptor order match registration order so
// prompt construction is deterministic.
type Registry struct {
	order  []string
	byName map[string]Tool
	logger log.Logger
}

// NewRegistry builds a registry from the given tools. Duplicate names are
// rejected at construction rather than silently shadowed.
func NewRegistry(logger log.Logger, tools ...Tool) *Registry {
	r := &Registry{
		byName: make(map[string]Tool, len(tools)),
		logger: logger,
	}
	for _, t := range tools {
		name := t.Descriptor.FunctionName
		if _, exists := r.byName[name]; exists {
			logger.Warn("duplicate tool registration ignored", "tool", name)
			continue
		}
		r.order = append(r.order, name)
		r.byName[name] = t
	}
	return r
}

// Lookup resolves a tool by its function name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Descriptor)
	}
	return out
}

// DescriptorsJSON serializes the registry for the tool-selection prompt.
func (r *Registry) DescriptorsJSON() string {
	b, err := json.Marshal(r.Descriptors())
	if err != nil {
		// Descriptors are static maps of strings; this cannot fail.
		r.logger.Error("marshaling tool descriptors", "error", err)
		return "[]"
	}
	return string(b)
}

// ResponseFormatJSON is the exemplar schema shown to the model so it
// answers with an array of calls rather than prose.
func ResponseFormatJSON() string {
	exemplar := []Request{{
		FunctionName: "tool_name_example_1",
		Parameters: Params{
			"parameter_1": "user input 1",
			"parameter_2": "user input 2",
		},
	}}
	b, _ := json.Marshal(exemplar)
	return string(b)
}
