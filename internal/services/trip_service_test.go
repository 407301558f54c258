package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-generator/internal/events"
	"github.com/SAP-F-2025/quiz-generator/internal/llm/llmtest"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
)

func newTripService(t *testing.T, provider *llmtest.ScriptedProvider) (TripService, string, *events.MockEventPublisher) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "outputs")
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc, err := NewTripService(provider, dir, publisher, nil, nil)
	require.NoError(t, err)
	return svc, dir, publisher
}

func TestTripService_Plan_SavesFinalAnswer(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Text("Lisbon"),
		llmtest.Text("Day 1: Alfama"),
		llmtest.Text("  Lisbon, Day 1: Alfama, total 600 USD  "),
	)
	svc, dir, publisher := newTripService(t, provider)

	result, err := svc.Plan(context.Background(), &models.TripRequest{PreferredRegion: " europe ", TripType: "Budget"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "trip_plan.txt"), result.OutputPath)
	assert.Equal(t, models.TripBudget, result.Request.TripType)
	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "++++++++++ Final Travel Plan +++++++++++ \n\nLisbon, Day 1: Alfama, total 600 USD\n", string(data))

	calls := provider.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0].SystemInstruction, "europe Destination Expert")
	assert.Contains(t, calls[2].Contents[0].Parts[0].Text, "--- plan_itinerary ---\nDay 1: Alfama")

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTripPlanned, published[0].Type)
}

func TestTripService_Plan_KeepsPlanSavedByTool(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Text("Kyoto"),
		llmtest.Text("Day 1: temples"),
		llmtest.Call("file_writer_tool", map[string]interface{}{"content": "FULL PLAN"}),
		llmtest.Text("The plan was saved."),
	)
	svc, _, _ := newTripService(t, provider)

	result, err := svc.Plan(context.Background(), &models.TripRequest{PreferredRegion: "asia", TripType: models.TripCultural})
	require.NoError(t, err)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "FULL PLAN\n"))
	assert.Equal(t, "The plan was saved.", result.Plan)
}

func TestTripService_Plan_RejectsUnknownTripType(t *testing.T) {
	provider := llmtest.NewScriptedProvider()
	svc, _, _ := newTripService(t, provider)

	_, err := svc.Plan(context.Background(), &models.TripRequest{PreferredRegion: "europe", TripType: "camping"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "trip_type", verrs[0].Field)
	assert.Empty(t, provider.Calls())
}

func TestTripService_Plan_CrewFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	provider := llmtest.NewScriptedProvider(llmtest.Fail(boom))
	svc, dir, publisher := newTripService(t, provider)

	_, err := svc.Plan(context.Background(), &models.TripRequest{PreferredRegion: "europe", TripType: models.TripLuxury})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, filepath.Join(dir, "trip_plan.txt"))
	assert.Empty(t, publisher.GetPublishedEvents())
}
