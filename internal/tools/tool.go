// Package tools holds the functions agents may call. Every tool reports
// failures inside its string result so the model can read them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/quiz-generator/internal/llm"
)

// Args holds the decoded arguments of a function call.
type Args map[string]interface{}

// RequiredString returns a required string argument.
func (a Args) RequiredString(key string) (string, error) {
	raw, ok := a[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// Tool is a callable exposed to the model.
type Tool interface {
	Declaration() llm.FunctionDeclaration
	Call(ctx context.Context, args Args) string
}

// FunctionTool adapts a Go function to Tool.
type FunctionTool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Fn          func(ctx context.Context, args Args) string
}

func (t FunctionTool) Declaration() llm.FunctionDeclaration {
	return llm.FunctionDeclaration{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
}

func (t FunctionTool) Call(ctx context.Context, args Args) string {
	return t.Fn(ctx, args)
}

// StringParams builds an object schema whose properties are all required strings.
func StringParams(props map[string]string) json.RawMessage {
	names := make([]string, 0, len(props))
	properties := make(map[string]interface{}, len(props))
	for name, description := range props {
		names = append(names, name)
		properties[name] = map[string]string{"type": "string", "description": description}
	}
	sort.Strings(names)
	schema, _ := json.Marshal(map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   names,
	})
	return schema
}

// Registry resolves tools by name.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	name := t.Declaration().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tools[name]
	return t, ok
}

// Declarations returns the declarations in registration order.
func (r *Registry) Declarations() []llm.FunctionDeclaration {
	if r == nil {
		return nil
	}
	out := make([]llm.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Declaration())
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}

// Execute dispatches a function call. Unknown tools and bad arguments are
// reported as "error: ..." results.
func (r *Registry) Execute(ctx context.Context, call llm.FunctionCall) string {
	t, ok := r.Get(call.Name)
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}
	return t.Call(ctx, Args(call.Args))
}
