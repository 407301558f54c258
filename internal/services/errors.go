package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/quiz-generator/internal/errors"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Quiz pipeline errors
	ErrInvalidURL      = errors.New("URL must start with http:// or https://")
	ErrRunNotFound     = errors.New("quiz run not found")
	ErrNoFinalJSON     = errors.New("No valid JSON found in final agent output.")
	ErrNotJSONObject   = errors.New("final agent output is not a JSON object")
	ErrNoGeneratedQuiz = errors.New("generators produced no questions")
	ErrAgentRunFailed  = errors.New("agent run failed")

	// Trip planner errors
	ErrEmptyTripPlan = errors.New("crew produced an empty trip plan")
)

// Use shared validation errors from errors package
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, repositories.ErrNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidURL) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}
