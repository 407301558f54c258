package agents

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
)

//go:embed agents.yaml
var defaultAgentsYAML []byte

// AgentSpec is the YAML description of an LLMAgent.
type AgentSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Instruction string   `yaml:"instruction"`
	Tools       []string `yaml:"tools"`
	InputKeys   []string `yaml:"input_keys"`
	OutputKey   string   `yaml:"output_key"`
	Temperature *float64 `yaml:"temperature"`
	JSONOutput  bool     `yaml:"json_output"`
}

// AgentSpecs maps a spec id (for example "mcq_generation") to its spec.
type AgentSpecs map[string]AgentSpec

// DefaultAgentSpecs returns the built-in quiz pipeline prompts.
func DefaultAgentSpecs() (AgentSpecs, error) {
	return ParseAgentSpecs(defaultAgentsYAML)
}

func ParseAgentSpecs(data []byte) (AgentSpecs, error) {
	var specs AgentSpecs
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse agent specs: %w", err)
	}
	for id, spec := range specs {
		if spec.Name == "" || spec.Instruction == "" {
			return nil, fmt.Errorf("agent spec %q needs a name and an instruction", id)
		}
	}
	return specs, nil
}

// Build creates the LLMAgent described by specs[id]. Tools are looked up by
// name in available.
func (s AgentSpecs) Build(id string, provider llm.Provider, available *tools.Registry) (*LLMAgent, error) {
	spec, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("unknown agent spec %q", id)
	}

	registry := tools.NewRegistry()
	for _, name := range spec.Tools {
		t, ok := available.Get(name)
		if !ok {
			return nil, fmt.Errorf("agent %s: tool %q is not available", spec.Name, name)
		}
		registry.Register(t)
	}

	return &LLMAgent{
		AgentName:   spec.Name,
		Description: spec.Description,
		Instruction: spec.Instruction,
		InputKeys:   spec.InputKeys,
		OutputKey:   spec.OutputKey,
		Provider:    provider,
		Tools:       registry,
		Temperature: spec.Temperature,
		JSONOutput:  spec.JSONOutput,
	}, nil
}
