// Package llmtest provides deterministic providers for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SAP-F-2025/quiz-generator/internal/llm"
)

// Responder produces the reply to one request.
type Responder func(req llm.Request) (*llm.Response, error)

// ScriptedProvider replies with queued responders. When a routed key occurs in
// the system instruction, that route's queue is used instead of the default one.
// It is safe for concurrent use.
type ScriptedProvider struct {
	mu       sync.Mutex
	queue    []Responder
	routes   map[string][]Responder
	Requests []llm.Request
}

func NewScriptedProvider(responders ...Responder) *ScriptedProvider {
	return &ScriptedProvider{queue: responders, routes: make(map[string][]Responder)}
}

// Route queues responders for requests whose system instruction contains key.
// Keys must not overlap.
func (p *ScriptedProvider) Route(key string, responders ...Responder) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[key] = append(p.routes[key], responders...)
	return p
}

func (p *ScriptedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	var next Responder
	for key, queue := range p.routes {
		if len(queue) > 0 && strings.Contains(req.SystemInstruction, key) {
			next, p.routes[key] = queue[0], queue[1:]
			break
		}
	}
	if next == nil && len(p.queue) > 0 {
		next, p.queue = p.queue[0], p.queue[1:]
	}
	p.mu.Unlock()

	if next == nil {
		return nil, fmt.Errorf("llmtest: no scripted response left")
	}
	return next(req)
}

// Calls returns a copy of the requests seen so far.
func (p *ScriptedProvider) Calls() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.Request, len(p.Requests))
	copy(out, p.Requests)
	return out
}

// Text replies with a single text part.
func Text(text string) Responder {
	return func(llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: llm.Content{Role: llm.RoleModel, Parts: []llm.Part{{Text: text}}}}, nil
	}
}

// Call replies with a single function call.
func Call(name string, args map[string]interface{}) Responder {
	return func(llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: llm.Content{Role: llm.RoleModel, Parts: []llm.Part{{
			FunctionCall: &llm.FunctionCall{Name: name, Args: args},
		}}}}, nil
	}
}

// Fail replies with err.
func Fail(err error) Responder {
	return func(llm.Request) (*llm.Response, error) {
		return nil, err
	}
}
