package agents

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SequentialAgent runs its sub-agents in order and stops at the first error.
type SequentialAgent struct {
	AgentName string
	SubAgents []Agent
}

func NewSequentialAgent(name string, subAgents ...Agent) *SequentialAgent {
	return &SequentialAgent{AgentName: name, SubAgents: subAgents}
}

func (a *SequentialAgent) Name() string { return a.AgentName }

func (a *SequentialAgent) Run(ctx context.Context, ic *InvocationContext) error {
	for _, sub := range a.SubAgents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runAgent(ctx, ic, sub); err != nil {
			return err
		}
	}
	return nil
}

// ParallelAgent runs its sub-agents concurrently. The first failure cancels
// the others and is returned.
type ParallelAgent struct {
	AgentName string
	SubAgents []Agent
}

func NewParallelAgent(name string, subAgents ...Agent) *ParallelAgent {
	return &ParallelAgent{AgentName: name, SubAgents: subAgents}
}

func (a *ParallelAgent) Name() string { return a.AgentName }

func (a *ParallelAgent) Run(ctx context.Context, ic *InvocationContext) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range a.SubAgents {
		sub := sub
		g.Go(func() error {
			return runAgent(gctx, ic, sub)
		})
	}
	return g.Wait()
}

// FuncAgent wraps a Go function as an agent step.
type FuncAgent struct {
	AgentName string
	Fn        func(ctx context.Context, ic *InvocationContext) error
}

func NewFuncAgent(name string, fn func(ctx context.Context, ic *InvocationContext) error) *FuncAgent {
	return &FuncAgent{AgentName: name, Fn: fn}
}

func (a *FuncAgent) Name() string { return a.AgentName }

func (a *FuncAgent) Run(ctx context.Context, ic *InvocationContext) error {
	return a.Fn(ctx, ic)
}
