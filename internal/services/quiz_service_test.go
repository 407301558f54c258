package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-generator/internal/agents"
	"github.com/SAP-F-2025/quiz-generator/internal/cache"
	"github.com/SAP-F-2025/quiz-generator/internal/events"
	"github.com/SAP-F-2025/quiz-generator/internal/llm/llmtest"
	"github.com/SAP-F-2025/quiz-generator/internal/metrics"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories/memory"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
)

const (
	routeAcquisition = "content acquisition and summarization specialist"
	routeMCQ         = "multiple-choice question (MCQ) designer"
	routeTF          = "true/false (T/F) question designer"
	routeValidator   = "Fact-Checking Agent"
	routeFormatter   = "final JSON formatting agent"

	mcqOutput = "```json\n[{\"question\": \"What is Go?\", \"options\": {\"A\": \"A language\", \"B\": \"A game\", \"C\": \"A verb\", \"D\": \"A city\"}, \"answer\": \"A\"}]\n```"
	tfOutput  = "[{\"question\": \"Go has goroutines.\", \"answer\": true}]"
	finalQuiz = `{"multiple_choice": [{"question": "What is Go?", "options": {"A": "A language", "B": "A game", "C": "A verb", "D": "A city"}, "answer": "A"}], "true_false": [{"question": "Go has goroutines.", "answer": true}], "validation_notes": "All good.", "fact_checking_sources": ["https://go.dev"]}`
)

type quizFixture struct {
	dir       string
	provider  *llmtest.ScriptedProvider
	runs      repositories.QuizRunRepository
	publisher *events.MockEventPublisher
	metrics   *metrics.Recorder
	briefs    *cache.FileBriefCache
	scrapes   int
	service   QuizService
}

type fixtureOption func(*quizFixture, *QuizServiceDeps)

func withBriefCache(briefs cache.BriefCache) fixtureOption {
	return func(_ *quizFixture, deps *QuizServiceDeps) { deps.Briefs = briefs }
}

func withMetrics(recorder *metrics.Recorder) fixtureOption {
	return func(f *quizFixture, deps *QuizServiceDeps) {
		f.metrics = recorder
		deps.Metrics = recorder
	}
}

func newQuizFixture(t *testing.T, opts ...fixtureOption) *quizFixture {
	t.Helper()
	specs, err := agents.DefaultAgentSpecs()
	require.NoError(t, err)

	f := &quizFixture{
		dir:       t.TempDir(),
		provider:  llmtest.NewScriptedProvider(),
		runs:      memory.NewQuizRunMemory(),
		publisher: events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil))),
		metrics:   metrics.NewRecorder("", nil),
	}
	f.briefs = cache.NewFileBriefCache(filepath.Join(f.dir, "content_brief.md"), nil)

	registry := tools.NewRegistry(
		tools.FunctionTool{Name: "web_scraper", Fn: func(ctx context.Context, args tools.Args) string {
			f.scrapes++
			return "Go is a programming language with goroutines."
		}},
		tools.FunctionTool{Name: "web_search", Fn: func(ctx context.Context, args tools.Args) string {
			return "No search results found."
		}},
	)

	deps := QuizServiceDeps{
		Provider:  f.provider,
		Specs:     specs,
		Tools:     registry,
		Briefs:    f.briefs,
		Runs:      f.runs,
		Publisher: f.publisher,
		Metrics:   f.metrics,
	}
	for _, opt := range opts {
		opt(f, &deps)
	}
	f.service = NewQuizService(deps, QuizServiceConfig{OutputDir: f.dir, ExportXLSX: true})
	return f
}

func (f *quizFixture) scriptGeneration() {
	f.provider.
		Route(routeMCQ, llmtest.Text(mcqOutput)).
		Route(routeTF, llmtest.Text(tfOutput)).
		Route(routeValidator, llmtest.Text(finalQuiz)).
		Route(routeFormatter, llmtest.Text("```json\n"+finalQuiz+"\n```"))
}

func (f *quizFixture) scriptAcquisition() {
	f.provider.Route(routeAcquisition,
		llmtest.Call("web_scraper", map[string]interface{}{"url": "https://go.dev"}),
		llmtest.Text("BRIEF: Go is a programming language."),
	)
}

func (f *quizFixture) requestsFor(route string) int {
	n := 0
	for _, req := range f.provider.Calls() {
		if strings.Contains(req.SystemInstruction, route) {
			n++
		}
	}
	return n
}

func (f *quizFixture) runCount(t *testing.T, status string) float64 {
	t.Helper()
	families, err := f.metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "quiz_generator_runs_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "status" && label.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestQuizService_Generate_Success(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.scriptGeneration()

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: " https://go.dev "})
	require.NoError(t, err)

	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Equal(t, "https://go.dev", result.URL)
	require.NotNil(t, result.Quiz)
	assert.Equal(t, 2, result.Quiz.QuestionCount())
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, f.scrapes)

	// final JSON keeps model key order with two-space indentation
	data, err := os.ReadFile(filepath.Join(f.dir, QuizJSONFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"multiple_choice\""))

	generated, err := os.ReadFile(filepath.Join(f.dir, GeneratedQuizFile))
	require.NoError(t, err)
	var checkpoint map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal(generated, &checkpoint))
	assert.Len(t, checkpoint["multiple_choice"], 1)
	assert.Len(t, checkpoint["true_false"], 1)

	assert.FileExists(t, filepath.Join(f.dir, QuizDocumentFile))
	assert.FileExists(t, filepath.Join(f.dir, QuizSheetFile))
	assert.Equal(t, filepath.Join(f.dir, QuizDocumentFile), result.DocumentPath)

	brief, err := f.briefs.Load(context.Background(), "https://go.dev")
	require.NoError(t, err)
	assert.Equal(t, "BRIEF: Go is a programming language.", brief)

	run, err := f.service.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, run.Status)
	assert.Equal(t, 1, run.MCQCount)
	assert.Equal(t, 1, run.TFCount)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizGenerated, published[0].Type)
	assert.Equal(t, 1.0, f.runCount(t, "success"))
}

func TestQuizService_Generate_PromptCarriesCacheFlag(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.scriptGeneration()

	_, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.NoError(t, err)

	calls := f.provider.Calls()
	require.NotEmpty(t, calls)
	prompt := calls[0].Contents[0].Parts[0].Text
	assert.Equal(t, "Generate a quiz for the URL: https://go.dev. Use cache: False", prompt)
}

func TestQuizService_Generate_UsesCachedBrief(t *testing.T) {
	f := newQuizFixture(t)
	require.NoError(t, f.briefs.Store(context.Background(), "https://go.dev", "CACHED BRIEF"))
	f.scriptGeneration()

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev", UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Equal(t, 0, f.requestsFor(routeAcquisition))
	assert.Equal(t, 0, f.scrapes)

	for _, req := range f.provider.Calls() {
		if strings.Contains(req.SystemInstruction, routeMCQ) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "--- content_brief ---\nCACHED BRIEF")
		}
	}
}

func TestQuizService_Generate_EmptyCacheFallsBackToScraping(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.scriptGeneration()

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev", UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Equal(t, 2, f.requestsFor(routeAcquisition))
	assert.Equal(t, 1, f.scrapes)
}

// unreadableBriefCache fails every Load and records what is stored.
type unreadableBriefCache struct {
	stored []string
}

func (c *unreadableBriefCache) Load(ctx context.Context, url string) (string, error) {
	return "", errors.New("read content_brief.md: permission denied")
}

func (c *unreadableBriefCache) Store(ctx context.Context, url, brief string) error {
	c.stored = append(c.stored, brief)
	return nil
}

func TestQuizService_Generate_CacheReadErrorFallsBackToScraping(t *testing.T) {
	briefs := &unreadableBriefCache{}
	f := newQuizFixture(t, withBriefCache(briefs))
	f.scriptAcquisition()
	f.scriptGeneration()

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev", UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Equal(t, 1, f.scrapes)
	assert.Equal(t, []string{"BRIEF: Go is a programming language."}, briefs.stored)
}

func TestQuizService_Generate_ValidatorSeesCheckpointedQuiz(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.provider.
		Route(routeMCQ, llmtest.Text("Here are some thoughts about Go instead of questions.")).
		Route(routeTF, llmtest.Text(tfOutput)).
		Route(routeValidator, llmtest.Text(finalQuiz)).
		Route(routeFormatter, llmtest.Text(finalQuiz))

	_, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.NoError(t, err)

	var prompt string
	for _, req := range f.provider.Calls() {
		if strings.Contains(req.SystemInstruction, routeValidator) {
			prompt = req.Contents[0].Parts[0].Text
		}
	}
	require.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "--- generated_quiz ---\n{")
	assert.Contains(t, prompt, "Go has goroutines.")
	assert.NotContains(t, prompt, "thoughts about Go")
	assert.NotContains(t, prompt, "--- mcq_questions ---")
	assert.NotContains(t, prompt, "--- tf_questions ---")
}

func TestQuizService_Generate_MetricsPushFailureKeepsRun(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer gateway.Close()

	f := newQuizFixture(t, withMetrics(metrics.NewRecorder(gateway.URL, nil)))
	f.scriptAcquisition()
	f.scriptGeneration()

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Equal(t, 1.0, f.runCount(t, "success"))

	_, err = f.service.GetRun(context.Background(), result.RunID)
	assert.NoError(t, err)
}

func TestQuizService_Generate_NoQuestionsGenerated(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.provider.
		Route(routeMCQ, llmtest.Text("I could not write questions.")).
		Route(routeTF, llmtest.Text("[]"))

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentRunFailed)
	require.NotNil(t, result)
	assert.Equal(t, models.RunFailure, result.Status)

	data, err := os.ReadFile(filepath.Join(f.dir, QuizJSONFile))
	require.NoError(t, err)
	var report map[string]string
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "Agent run failed: "+ErrNoGeneratedQuiz.Error(), report["error"])
	assert.NotEmpty(t, report["raw_output"])

	assert.NoFileExists(t, filepath.Join(f.dir, QuizDocumentFile))
	assert.NoFileExists(t, filepath.Join(f.dir, GeneratedQuizFile))
	assert.Equal(t, 0, f.requestsFor(routeValidator))

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizFailed, published[0].Type)
	assert.Equal(t, 1.0, f.runCount(t, "failure"))

	runs, total, err := f.service.ListRuns(context.Background(), repositories.QuizRunFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, models.RunFailure, runs[0].Status)
}

func TestQuizService_Generate_FinalOutputNotAnObject(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.provider.
		Route(routeMCQ, llmtest.Text(mcqOutput)).
		Route(routeTF, llmtest.Text(tfOutput)).
		Route(routeValidator, llmtest.Text(finalQuiz)).
		Route(routeFormatter, llmtest.Text(tfOutput))

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentRunFailed)
	assert.Contains(t, result.Error, ErrNotJSONObject.Error())
	assert.NoFileExists(t, filepath.Join(f.dir, QuizDocumentFile))
}

func TestQuizService_Generate_ZeroQuestionsIsSuccess(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	f.provider.
		Route(routeMCQ, llmtest.Text(mcqOutput)).
		Route(routeTF, llmtest.Text(tfOutput)).
		Route(routeValidator, llmtest.Text(finalQuiz)).
		Route(routeFormatter, llmtest.Text(`{"multiple_choice": [], "true_false": []}`))

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Zero(t, result.Quiz.QuestionCount())
	assert.Empty(t, result.DocumentPath, "word export refuses an empty quiz")
}

func TestQuizService_Generate_WarnsOnBadAnswerKey(t *testing.T) {
	f := newQuizFixture(t)
	f.scriptAcquisition()
	bad := strings.Replace(finalQuiz, `"answer": "A"`, `"answer": "E"`, 1)
	f.provider.
		Route(routeMCQ, llmtest.Text(mcqOutput)).
		Route(routeTF, llmtest.Text(tfOutput)).
		Route(routeValidator, llmtest.Text(bad)).
		Route(routeFormatter, llmtest.Text(bad))

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, result.Status)
	assert.NotEmpty(t, result.Warnings)
}

func TestQuizService_Generate_InvalidURL(t *testing.T) {
	f := newQuizFixture(t)

	result, err := f.service.Generate(context.Background(), &GenerateQuizRequest{URL: "ftp://go.dev"})
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Nil(t, result)
	assert.Empty(t, f.provider.Calls())
}

func TestQuizService_GetRun_NotFound(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.service.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.True(t, IsNotFound(err))
}

func TestQuizService_GetLatestRun(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	require.NoError(t, f.runs.Create(ctx, &models.QuizRun{ID: "ok", URL: "https://go.dev", Status: models.RunSuccess}))
	require.NoError(t, f.runs.Create(ctx, &models.QuizRun{ID: "failed", URL: "https://go.dev", Status: models.RunFailure}))

	run, err := f.service.GetLatestRun(ctx, " https://go.dev ")
	require.NoError(t, err)
	assert.Equal(t, "ok", run.ID)

	_, err = f.service.GetLatestRun(ctx, "https://other.dev")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestQuizPrompt(t *testing.T) {
	assert.Equal(t, "Generate a quiz for the URL: https://a.example. Use cache: True", QuizPrompt("https://a.example", true))
}
