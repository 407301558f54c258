package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// maxLoggedWarnings caps how many quiz warnings are expanded in one record.
const maxLoggedWarnings = 5

// ServiceLogger writes one structured record per service operation.
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// ===== OPERATION LOGGING =====

// operationOutcome maps an operation error to a status label and level.
// Validation failures are the caller's fault and a missing run is routine.
func operationOutcome(err error) (string, slog.Level) {
	switch {
	case err == nil:
		return "success", slog.LevelInfo
	case IsValidation(err):
		return "validation_error", slog.LevelWarn
	case IsNotFound(err):
		return "not_found", slog.LevelInfo
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled", slog.LevelWarn
	default:
		return "error", slog.LevelError
	}
}

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, resourceID string, resourceType string, duration time.Duration, err error) {
	status, level := operationOutcome(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		if errors.As(err, &validationErr) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogValidationWarnings records quiz problems that do not fail the run.
func (l *ServiceLogger) LogValidationWarnings(ctx context.Context, operation string, resourceID string, warnings ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_id", resourceID),
		slog.Int("warning_count", len(warnings)),
	}

	for i, w := range warnings {
		if i == maxLoggedWarnings {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("warning_%d", i+1),
			slog.String("field", w.Field),
			slog.String("message", w.Message),
			slog.Any("value", w.Value),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Quiz validation warnings", attrs...)
}

// ===== ERROR FORMATTING HELPERS =====

// FormatError renders err for an API response body.
func FormatError(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	result := map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}

	var validationErrs ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		result["type"] = "validation"
		result["count"] = len(validationErrs)

		fields := make([]map[string]interface{}, len(validationErrs))
		for i, validationErr := range validationErrs {
			fields[i] = map[string]interface{}{
				"field":   validationErr.Field,
				"message": validationErr.Message,
				"value":   validationErr.Value,
			}
		}
		result["errors"] = fields

	case IsNotFound(err):
		result["type"] = "not_found"

	case IsValidation(err):
		result["type"] = "validation"

	case errors.Is(err, ErrAgentRunFailed):
		result["type"] = "agent_run_failed"
	}

	return result
}
