package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
)

// QuizRunMemory keeps runs in process memory. Used when no database is
// configured.
type QuizRunMemory struct {
	mu   sync.RWMutex
	runs map[string]*models.QuizRun
}

func NewQuizRunMemory() repositories.QuizRunRepository {
	return &QuizRunMemory{runs: make(map[string]*models.QuizRun)}
}

func (m *QuizRunMemory) Create(ctx context.Context, run *models.QuizRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	stored := *run
	m.runs[run.ID] = &stored
	return nil
}

func (m *QuizRunMemory) GetByID(ctx context.Context, id string) (*models.QuizRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *run
	return &out, nil
}

func (m *QuizRunMemory) List(ctx context.Context, filters repositories.QuizRunFilters) ([]*models.QuizRun, int64, error) {
	filters = repositories.NormalizeFilters(filters)

	m.mu.RLock()
	matched := make([]*models.QuizRun, 0, len(m.runs))
	for _, run := range m.runs {
		if matches(run, filters) {
			out := *run
			matched = append(matched, &out)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		less := lessBy(matched[i], matched[j], filters.SortBy)
		if filters.SortOrder == "asc" {
			return less
		}
		return lessBy(matched[j], matched[i], filters.SortBy)
	})

	total := int64(len(matched))
	if filters.Offset >= len(matched) {
		return []*models.QuizRun{}, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filters.Offset:end], total, nil
}

func (m *QuizRunMemory) GetLatestByURL(ctx context.Context, url string) (*models.QuizRun, error) {
	status := models.RunSuccess
	runs, _, err := m.List(ctx, repositories.QuizRunFilters{URL: url, Status: &status, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, repositories.ErrNotFound
	}
	return runs[0], nil
}

func (m *QuizRunMemory) Stats(ctx context.Context) (*repositories.QuizRunStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats repositories.QuizRunStats
	var totalDuration int64
	for _, run := range m.runs {
		stats.TotalRuns++
		switch run.Status {
		case models.RunSuccess:
			stats.SuccessfulRuns++
		case models.RunFailure:
			stats.FailedRuns++
		}
		totalDuration += run.DurationMs
		stats.TotalQuestions += int64(run.QuestionCount)
	}
	if stats.TotalRuns > 0 {
		stats.AverageDurationMs = float64(totalDuration) / float64(stats.TotalRuns)
	}
	return &stats, nil
}

func matches(run *models.QuizRun, filters repositories.QuizRunFilters) bool {
	if filters.Status != nil && run.Status != *filters.Status {
		return false
	}
	if filters.URL != "" && run.URL != filters.URL {
		return false
	}
	if filters.DateFrom != nil && run.CreatedAt.Before(*filters.DateFrom) {
		return false
	}
	if filters.DateTo != nil && run.CreatedAt.After(*filters.DateTo) {
		return false
	}
	return true
}

func lessBy(a, b *models.QuizRun, column string) bool {
	switch column {
	case "duration_ms":
		return a.DurationMs < b.DurationMs
	case "question_count":
		return a.QuestionCount < b.QuestionCount
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
