package agents

import (
	"context"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

// Runner executes an agent tree against sessions from a session service.
type Runner struct {
	AppName  string
	Agent    Agent
	Sessions *InMemorySessionService
	Logger   utils.Logger
}

func NewRunner(appName string, agent Agent, sessions *InMemorySessionService, logger utils.Logger) *Runner {
	if sessions == nil {
		sessions = NewInMemorySessionService()
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Runner{AppName: appName, Agent: agent, Sessions: sessions, Logger: logger}
}

// Run feeds message to the root agent in the given session. onEvent is
// called for every event, one at a time, in emission order.
func (r *Runner) Run(ctx context.Context, userID, sessionID, message string, onEvent func(Event)) error {
	session, err := r.Sessions.GetSession(ctx, r.AppName, userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var mu sync.Mutex
	ic := NewInvocationContext(session, message, r.Logger, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		r.Logger.Debug("Agent event", "event_id", e.ID, "author", e.Author, "final", e.Final, "text", e.Text)
		r.Logger.Info(fmt.Sprintf("%s %s is producing output...", utils.AgentLogPrefix, e.Author))
		if onEvent != nil {
			onEvent(e)
		}
	})

	r.Logger.Debug("Starting agent run", "agent", r.Agent.Name(), "invocation_id", ic.InvocationID, "session_id", session.ID)
	return runAgent(ctx, ic, r.Agent)
}
