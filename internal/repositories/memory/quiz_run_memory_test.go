package memory

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo repositories.QuizRunRepository) {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []*models.QuizRun{
		{ID: "r1", URL: "https://a.example", Status: models.RunSuccess, QuestionCount: 10, DurationMs: 1000, CreatedAt: base},
		{ID: "r2", URL: "https://a.example", Status: models.RunFailure, DurationMs: 300, CreatedAt: base.Add(time.Minute)},
		{ID: "r3", URL: "https://b.example", Status: models.RunSuccess, QuestionCount: 8, DurationMs: 2000, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "r4", URL: "https://a.example", Status: models.RunSuccess, QuestionCount: 6, DurationMs: 500, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, run := range runs {
		require.NoError(t, repo.Create(context.Background(), run))
	}
}

func TestQuizRunMemory_GetByID(t *testing.T) {
	repo := NewQuizRunMemory()
	seed(t, repo)

	run, err := repo.GetByID(context.Background(), "r3")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", run.URL)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestQuizRunMemory_List(t *testing.T) {
	repo := NewQuizRunMemory()
	seed(t, repo)
	ctx := context.Background()

	runs, total, err := repo.List(ctx, repositories.QuizRunFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, runs, 4)
	assert.Equal(t, "r4", runs[0].ID, "default order is newest first")

	success := models.RunSuccess
	runs, total, err = repo.List(ctx, repositories.QuizRunFilters{
		Status: &success, URL: "https://a.example", SortBy: "duration_ms", SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, runs, 2)
	assert.Equal(t, "r4", runs[0].ID)
	assert.Equal(t, "r1", runs[1].ID)

	runs, total, err = repo.List(ctx, repositories.QuizRunFilters{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, runs, 1)

	runs, _, err = repo.List(ctx, repositories.QuizRunFilters{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestQuizRunMemory_GetLatestByURL(t *testing.T) {
	repo := NewQuizRunMemory()
	seed(t, repo)

	run, err := repo.GetLatestByURL(context.Background(), "https://a.example")
	require.NoError(t, err)
	assert.Equal(t, "r4", run.ID)

	require.NoError(t, repo.Create(context.Background(), &models.QuizRun{
		ID: "r5", URL: "https://a.example", Status: models.RunFailure,
		CreatedAt: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC),
	}))
	run, err = repo.GetLatestByURL(context.Background(), "https://a.example")
	require.NoError(t, err)
	assert.Equal(t, "r4", run.ID, "newer failed runs are skipped")

	_, err = repo.GetLatestByURL(context.Background(), "https://c.example")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestQuizRunMemory_Stats(t *testing.T) {
	repo := NewQuizRunMemory()
	seed(t, repo)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalRuns)
	assert.EqualValues(t, 3, stats.SuccessfulRuns)
	assert.EqualValues(t, 1, stats.FailedRuns)
	assert.EqualValues(t, 24, stats.TotalQuestions)
	assert.InDelta(t, 950.0, stats.AverageDurationMs, 0.001)
}
