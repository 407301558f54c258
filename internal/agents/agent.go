// Package agents composes LLM calls and plain Go steps into pipelines that
// share a session state.
package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-generator/internal/tracing"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

// Agent is one step of a pipeline.
type Agent interface {
	Name() string
	Run(ctx context.Context, ic *InvocationContext) error
}

// Event is emitted whenever an agent produces output.
type Event struct {
	ID           string    `json:"id"`
	InvocationID string    `json:"invocation_id"`
	Author       string    `json:"author"`
	Text         string    `json:"text,omitempty"`
	Final        bool      `json:"final"`
	Timestamp    time.Time `json:"timestamp"`
}

// IsFinalResponse reports whether the event carries an agent's final answer
// rather than an intermediate tool exchange.
func (e Event) IsFinalResponse() bool {
	return e.Final
}

// InvocationContext carries the state of one Runner.Run call.
type InvocationContext struct {
	InvocationID string
	UserMessage  string
	Session      *Session
	Logger       utils.Logger

	emit func(Event)
}

// NewInvocationContext builds a context outside a Runner, mainly for tests.
// onEvent may be nil.
func NewInvocationContext(session *Session, message string, logger utils.Logger, onEvent func(Event)) *InvocationContext {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &InvocationContext{
		InvocationID: "e-" + uuid.NewString(),
		UserMessage:  message,
		Session:      session,
		Logger:       logger,
		emit:         onEvent,
	}
}

// Emit publishes an event authored by author.
func (ic *InvocationContext) Emit(author, text string, final bool) {
	ic.emit(Event{
		ID:           uuid.NewString(),
		InvocationID: ic.InvocationID,
		Author:       author,
		Text:         text,
		Final:        final,
		Timestamp:    time.Now(),
	})
}

// State is shorthand for ic.Session.State.
func (ic *InvocationContext) State() *State {
	return ic.Session.State
}

// RunSubAgent lets a custom agent delegate to a child agent.
func RunSubAgent(ctx context.Context, ic *InvocationContext, a Agent) error {
	return runAgent(ctx, ic, a)
}

// runAgent runs a inside a tracing span named after it.
func runAgent(ctx context.Context, ic *InvocationContext, a Agent) error {
	ctx, span := tracing.StartSpan(ctx, "agent."+a.Name(), map[string]string{
		"invocation.id": ic.InvocationID,
		"session.id":    ic.Session.ID,
	})
	err := a.Run(ctx, ic)
	span.End(err)
	return err
}
