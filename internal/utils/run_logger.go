package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// AgentLogPrefix marks records that are shown on the console during a run.
const AgentLogPrefix = "[AGENT]"

// RunLogger is the Logger used by the command line tools. Every record goes to
// the log file at debug level. The console only sees agent progress lines.
type RunLogger struct {
	Logger
	file io.Closer
}

// NewRunLogger opens (appending) the log file at path and fans records out to
// it and to console.
func NewRunLogger(path string, console io.Writer) (*RunLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &RunLogger{
		Logger: NewSlogLogger(slog.New(NewRunHandler(f, console))),
		file:   f,
	}, nil
}

// Close closes the log file.
func (l *RunLogger) Close() error {
	return l.file.Close()
}

// NewRunHandler builds the file+console handler pair behind RunLogger.
func NewRunHandler(file, console io.Writer) slog.Handler {
	return slogmulti.Fanout(
		slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slogmulti.Router().
			Add(slog.NewTextHandler(console, &slog.HandlerOptions{Level: slog.LevelInfo}), isAgentRecord).
			Handler(),
	)
}

func isAgentRecord(_ context.Context, r slog.Record) bool {
	return strings.HasPrefix(r.Message, AgentLogPrefix)
}
