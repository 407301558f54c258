package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("record not found")

// ===== FILTER STRUCTS =====

type QuizRunFilters struct {
	Status    *models.RunStatus `json:"status"`
	URL       string            `json:"url"`
	DateFrom  *time.Time        `json:"date_from"`
	DateTo    *time.Time        `json:"date_to"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
	SortBy    string            `json:"sort_by"`    // "created_at", "duration_ms", "question_count"
	SortOrder string            `json:"sort_order"` // "asc", "desc"
}

// ===== STATISTICS =====

type QuizRunStats struct {
	TotalRuns         int64   `json:"total_runs"`
	SuccessfulRuns    int64   `json:"successful_runs"`
	FailedRuns        int64   `json:"failed_runs"`
	AverageDurationMs float64 `json:"average_duration_ms"`
	TotalQuestions    int64   `json:"total_questions"`
}

// ===== REPOSITORIES =====

type QuizRunRepository interface {
	Create(ctx context.Context, run *models.QuizRun) error
	GetByID(ctx context.Context, id string) (*models.QuizRun, error)
	List(ctx context.Context, filters QuizRunFilters) ([]*models.QuizRun, int64, error)
	// GetLatestByURL returns the newest successful run for url.
	GetLatestByURL(ctx context.Context, url string) (*models.QuizRun, error)
	Stats(ctx context.Context) (*QuizRunStats, error)
}

// Sort columns accepted by List.
var QuizRunSortColumns = map[string]bool{
	"created_at":     true,
	"duration_ms":    true,
	"question_count": true,
}

// NormalizeFilters applies defaults and caps to filters.
func NormalizeFilters(filters QuizRunFilters) QuizRunFilters {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	if !QuizRunSortColumns[filters.SortBy] {
		filters.SortBy = "created_at"
	}
	if filters.SortOrder != "asc" {
		filters.SortOrder = "desc"
	}
	return filters
}
