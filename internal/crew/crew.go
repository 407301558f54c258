// Package crew runs YAML-defined crews: role-playing agents that work through
// a list of tasks, each task seeing the outputs of the tasks before it.
package crew

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/quiz-generator/internal/agents"
	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/storage"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

//go:embed crews/*.yaml
var builtinCrews embed.FS

const ProcessSequential = "sequential"

var (
	ErrMissingInput = errors.New("missing crew input")
	ErrUnknownCrew  = errors.New("unknown crew")
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

type AgentConfig struct {
	Role        string   `yaml:"role"`
	Goal        string   `yaml:"goal"`
	Backstory   string   `yaml:"backstory"`
	Tools       []string `yaml:"tools"`
	Temperature *float64 `yaml:"temperature"`
}

type TaskConfig struct {
	ID             string `yaml:"id"`
	Agent          string `yaml:"agent"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	// Context lists task ids whose output this task sees. Empty means every
	// earlier task.
	Context    []string `yaml:"context"`
	OutputFile string   `yaml:"output_file"`
}

// Crew is a parsed crew definition.
type Crew struct {
	Name    string                 `yaml:"name"`
	Process string                 `yaml:"process"`
	Agents  map[string]AgentConfig `yaml:"agents"`
	Tasks   []TaskConfig           `yaml:"tasks"`
}

// Load returns one of the embedded crews by name.
func Load(name string) (*Crew, error) {
	data, err := builtinCrews.ReadFile("crews/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCrew, name)
	}
	return Parse(data)
}

// Parse decodes and checks a crew definition.
func Parse(data []byte) (*Crew, error) {
	var c Crew
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse crew yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse crew yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse crew yaml: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Crew) validate() error {
	if c.Process == "" {
		c.Process = ProcessSequential
	}
	if c.Process != ProcessSequential {
		return fmt.Errorf("crew %s: unsupported process %q", c.Name, c.Process)
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("crew %s: no tasks", c.Name)
	}
	seen := make(map[string]bool, len(c.Tasks))
	for i, task := range c.Tasks {
		if task.ID == "" {
			return fmt.Errorf("crew %s: task %d has no id", c.Name, i)
		}
		if seen[task.ID] {
			return fmt.Errorf("crew %s: duplicate task id %q", c.Name, task.ID)
		}
		if _, ok := c.Agents[task.Agent]; !ok {
			return fmt.Errorf("crew %s: task %s uses unknown agent %q", c.Name, task.ID, task.Agent)
		}
		for _, dep := range task.Context {
			if !seen[dep] {
				return fmt.Errorf("crew %s: task %s depends on %q which does not run before it", c.Name, task.ID, dep)
			}
		}
		seen[task.ID] = true
	}
	return nil
}

// Interpolate replaces {name} placeholders with inputs[name]. A placeholder
// without an input is an error.
func Interpolate(template string, inputs map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := inputs[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}
	return out, nil
}

// Build turns the tasks into a sequential agent tree. Each task stores its
// output in session state under its id.
func (c *Crew) Build(provider llm.Provider, available *tools.Registry, inputs map[string]string) (*agents.SequentialAgent, error) {
	if available == nil {
		available = tools.NewRegistry()
	}
	steps := make([]agents.Agent, 0, len(c.Tasks))
	var previous []string

	for _, task := range c.Tasks {
		agentCfg := c.Agents[task.Agent]
		instruction, err := c.instruction(agentCfg, task, inputs)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}

		registry := tools.NewRegistry()
		for _, name := range agentCfg.Tools {
			t, ok := available.Get(name)
			if !ok {
				return nil, fmt.Errorf("task %s: tool %q is not available", task.ID, name)
			}
			registry.Register(t)
		}

		inputKeys := task.Context
		if len(inputKeys) == 0 {
			inputKeys = append([]string(nil), previous...)
		}

		steps = append(steps, &agents.LLMAgent{
			AgentName:   task.Agent,
			Description: task.ID,
			Instruction: instruction,
			InputKeys:   inputKeys,
			OutputKey:   task.ID,
			Provider:    provider,
			Tools:       registry,
			Temperature: agentCfg.Temperature,
		})
		previous = append(previous, task.ID)
	}
	return agents.NewSequentialAgent(c.Name, steps...), nil
}

func (c *Crew) instruction(agent AgentConfig, task TaskConfig, inputs map[string]string) (string, error) {
	parts := []struct{ label, text string }{
		{"You are", agent.Role},
		{"Your goal", agent.Goal},
		{"Background", agent.Backstory},
		{"Task", task.Description},
		{"Expected output", task.ExpectedOutput},
	}
	var b strings.Builder
	for _, part := range parts {
		text, err := Interpolate(strings.TrimSpace(part.text), inputs)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", part.label, text)
	}
	return b.String(), nil
}

// Result holds every task output of a kickoff.
type Result struct {
	Outputs map[string]string
	// Final is the output of the last task.
	Final string
}

// Runner kicks off crews.
type Runner struct {
	Provider llm.Provider
	Tools    *tools.Registry
	Store    *storage.Store
	// OutputDir is where task output files are written.
	OutputDir string
	Logger    utils.Logger
}

// Kickoff runs the crew with inputs and writes any task output files.
func (r *Runner) Kickoff(ctx context.Context, c *Crew, inputs map[string]string) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	root, err := c.Build(r.Provider, r.Tools, inputs)
	if err != nil {
		return nil, err
	}

	sessions := agents.NewInMemorySessionService()
	session, err := sessions.CreateSession(ctx, c.Name, "crew", inputs)
	if err != nil {
		return nil, err
	}

	runner := agents.NewRunner(c.Name, root, sessions, logger)
	if err := runner.Run(ctx, session.UserID, session.ID, kickoffMessage(inputs), nil); err != nil {
		return nil, fmt.Errorf("crew %s: %w", c.Name, err)
	}

	result := &Result{Outputs: make(map[string]string, len(c.Tasks))}
	for _, task := range c.Tasks {
		output, _ := session.State.Get(task.ID)
		result.Outputs[task.ID] = output
		result.Final = output
		if task.OutputFile != "" {
			if err := r.writeOutput(ctx, task.OutputFile, output); err != nil {
				return nil, fmt.Errorf("task %s: %w", task.ID, err)
			}
		}
	}
	return result, nil
}

func (r *Runner) writeOutput(ctx context.Context, name, output string) error {
	store := r.Store
	if store == nil {
		store = storage.New()
	}
	dir := r.OutputDir
	if dir == "" {
		dir = "."
	}
	return store.Write(ctx, filepath.Join(dir, name), []byte(output))
}

func kickoffMessage(inputs map[string]string) string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("Complete your task using these inputs:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s: %s", k, inputs[k])
	}
	return b.String()
}
