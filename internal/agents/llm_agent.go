package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
)

// DefaultMaxToolRounds bounds the function-calling loop of an LLMAgent.
const DefaultMaxToolRounds = 8

var (
	ErrToolRoundsExceeded = errors.New("tool round limit exceeded")
	ErrEmptyModelOutput   = errors.New("model returned no text")
)

// LLMAgent sends its instruction, the user message and selected state values
// to the model, executes any function calls, and stores the final text under
// OutputKey.
type LLMAgent struct {
	AgentName   string
	Description string
	Instruction string
	// InputKeys are state keys appended to the prompt, in order. Missing keys
	// are skipped.
	InputKeys     []string
	OutputKey     string
	Provider      llm.Provider
	Tools         *tools.Registry
	Temperature   *float64
	JSONOutput    bool
	MaxToolRounds int
}

func (a *LLMAgent) Name() string { return a.AgentName }

func (a *LLMAgent) Run(ctx context.Context, ic *InvocationContext) error {
	if a.Provider == nil {
		return fmt.Errorf("%s: no model provider configured", a.AgentName)
	}
	maxRounds := a.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	req := llm.Request{
		SystemInstruction: a.Instruction,
		Contents:          []llm.Content{llm.UserText(a.buildPrompt(ic))},
		Tools:             a.Tools.Declarations(),
		Temperature:       a.Temperature,
		JSONOutput:        a.JSONOutput,
	}

	for round := 0; ; round++ {
		resp, err := a.Provider.Generate(ctx, req)
		if err != nil {
			return fmt.Errorf("%s: %w", a.AgentName, err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			text := strings.TrimSpace(resp.Text())
			if text == "" {
				return fmt.Errorf("%s: %w", a.AgentName, ErrEmptyModelOutput)
			}
			if a.OutputKey != "" {
				ic.State().Set(a.OutputKey, text)
			}
			ic.Emit(a.AgentName, text, true)
			return nil
		}

		if round >= maxRounds {
			return fmt.Errorf("%s: %w (%d)", a.AgentName, ErrToolRoundsExceeded, maxRounds)
		}

		req.Contents = append(req.Contents, resp.Content)
		responses := make([]llm.Part, 0, len(calls))
		for _, call := range calls {
			ic.Logger.DebugContext(ctx, "Executing tool call", "agent", a.AgentName, "tool", call.Name, "args", call.Args)
			ic.Emit(a.AgentName, "call "+call.Name, false)

			result := a.Tools.Execute(ctx, call)
			responses = append(responses, llm.Part{FunctionResponse: &llm.FunctionResponse{
				Name:     call.Name,
				Response: map[string]interface{}{"result": result},
			}})
			ic.Emit(a.AgentName, call.Name+" returned "+truncate(result, 200), false)
		}
		req.Contents = append(req.Contents, llm.Content{Role: llm.RoleUser, Parts: responses})
	}
}

func (a *LLMAgent) buildPrompt(ic *InvocationContext) string {
	var b strings.Builder
	b.WriteString(ic.UserMessage)
	for _, key := range a.InputKeys {
		value, ok := ic.State().Get(key)
		if !ok || value == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n--- %s ---\n%s", key, value)
	}
	return b.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
