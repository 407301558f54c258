package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
)

// ===== QUIZ GENERATION =====

type GenerateQuizRequest struct {
	URL      string `json:"url" validate:"required,web_url"`
	UseCache bool   `json:"use_cache"`
}

type QuizResult struct {
	RunID           string           `json:"run_id"`
	SessionID       string           `json:"session_id"`
	URL             string           `json:"url"`
	UseCache        bool             `json:"use_cache"`
	Status          models.RunStatus `json:"status"`
	Quiz            *models.Quiz     `json:"quiz,omitempty"`
	Warnings        ValidationErrors `json:"warnings,omitempty"`
	Error           string           `json:"error,omitempty"`
	JSONPath        string           `json:"json_path"`
	DocumentPath    string           `json:"document_path,omitempty"`
	SpreadsheetPath string           `json:"spreadsheet_path,omitempty"`
	Duration        time.Duration    `json:"duration"`
}

type QuizService interface {
	// Generate runs the whole pipeline for one URL. A failed run still
	// returns its result alongside the error.
	Generate(ctx context.Context, req *GenerateQuizRequest) (*QuizResult, error)
	GetRun(ctx context.Context, id string) (*models.QuizRun, error)
	// GetLatestRun returns the newest successful run for url.
	GetLatestRun(ctx context.Context, url string) (*models.QuizRun, error)
	ListRuns(ctx context.Context, filters repositories.QuizRunFilters) ([]*models.QuizRun, int64, error)
	GetStats(ctx context.Context) (*repositories.QuizRunStats, error)
}

// ===== TRIP PLANNING =====

type TripPlanResult struct {
	Request    models.TripRequest `json:"request"`
	Plan       string             `json:"plan"`
	OutputPath string             `json:"output_path"`
	Duration   time.Duration      `json:"duration"`
}

type TripService interface {
	Plan(ctx context.Context, req *models.TripRequest) (*TripPlanResult, error)
}
