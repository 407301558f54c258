package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/quiz-generator/internal/agents"
	"github.com/SAP-F-2025/quiz-generator/internal/cache"
	"github.com/SAP-F-2025/quiz-generator/internal/events"
	"github.com/SAP-F-2025/quiz-generator/internal/export"
	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/metrics"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
	"github.com/SAP-F-2025/quiz-generator/internal/storage"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
	"github.com/SAP-F-2025/quiz-generator/internal/validator"
)

const (
	DefaultQuizAppName = "quiz_generator_terminal"

	GeneratedQuizFile = "generated_quiz.json"
	QuizJSONFile      = "quiz_output.json"
	QuizDocumentFile  = "quiz_output.docx"
	QuizSheetFile     = "quiz_output.xlsx"

	stateURL = "url"
)

// State keys written by the pipeline agents.
const (
	KeyContentBrief  = "content_brief"
	KeyMCQQuestions  = "mcq_questions"
	KeyTFQuestions   = "tf_questions"
	KeyGeneratedQuiz = "generated_quiz"
)

type QuizServiceConfig struct {
	AppName    string
	OutputDir  string
	ExportXLSX bool
}

type quizService struct {
	provider  llm.Provider
	specs     agents.AgentSpecs
	tools     *tools.Registry
	briefs    cache.BriefCache
	runs      repositories.QuizRunRepository
	publisher events.EventPublisher
	metrics   *metrics.Recorder
	validator *validator.Validator
	store     *storage.Store
	sessions  *agents.InMemorySessionService
	logger    utils.Logger
	opLogger  *ServiceLogger
	config    QuizServiceConfig
}

// QuizServiceDeps groups the collaborators of the quiz service. Runs,
// Publisher and Metrics are optional.
type QuizServiceDeps struct {
	Provider  llm.Provider
	Specs     agents.AgentSpecs
	Tools     *tools.Registry
	Briefs    cache.BriefCache
	Runs      repositories.QuizRunRepository
	Publisher events.EventPublisher
	Metrics   *metrics.Recorder
	Validator *validator.Validator
	Store     *storage.Store
	Logger    utils.Logger
}

func NewQuizService(deps QuizServiceDeps, config QuizServiceConfig) QuizService {
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Store == nil {
		deps.Store = storage.New()
	}
	if config.AppName == "" {
		config.AppName = DefaultQuizAppName
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	return &quizService{
		provider:  deps.Provider,
		specs:     deps.Specs,
		tools:     deps.Tools,
		briefs:    deps.Briefs,
		runs:      deps.Runs,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		validator: deps.Validator,
		store:     deps.Store,
		sessions:  agents.NewInMemorySessionService(),
		logger:    deps.Logger,
		opLogger: NewServiceLogger(utils.ToSlogLogger(deps.Logger), LogConfig{
			Service:   "quiz-generator",
			Component: "quiz_service",
		}),
		config: config,
	}
}

// QuizPrompt is the user message that starts a run.
func QuizPrompt(url string, useCache bool) string {
	flag := "False"
	if useCache {
		flag = "True"
	}
	return fmt.Sprintf("Generate a quiz for the URL: %s. Use cache: %s", url, flag)
}

// ===== GENERATION =====

func (s *quizService) Generate(ctx context.Context, req *GenerateQuizRequest) (*QuizResult, error) {
	start := time.Now()
	req.URL = strings.TrimSpace(req.URL)
	s.logger.Info("--- Quiz Generator Process Started ---", "url", req.URL, "use_cache", req.UseCache)

	if !validator.ValidateWebURL(req.URL) {
		s.opLogger.LogOperation(ctx, "generate_quiz", "", "quiz_run", time.Since(start), ErrInvalidURL)
		return nil, ErrInvalidURL
	}

	result := &QuizResult{
		RunID:    uuid.NewString(),
		URL:      req.URL,
		UseCache: req.UseCache,
		Status:   models.RunFailure,
		JSONPath: s.outputPath(QuizJSONFile),
	}

	var collected []agents.Event
	quizJSON, runErr := s.runPipeline(ctx, req, result, &collected)

	var quiz models.Quiz
	if runErr == nil {
		if err := json.Unmarshal(quizJSON, &quiz); err != nil {
			runErr = fmt.Errorf("failed to decode quiz: %w", err)
		}
	}

	if runErr != nil {
		result.Error = fmt.Sprintf("Agent run failed: %v", runErr)
		s.logger.Error("Error during agent run or parsing", "error", runErr)
		s.writeFailureReport(ctx, result, collected)
	} else {
		result.Status = models.RunSuccess
		result.Quiz = &quiz
		s.finishSuccess(ctx, result, quizJSON)
	}

	result.Duration = time.Since(start)
	s.record(ctx, result, quizJSON)
	s.opLogger.LogOperation(ctx, "generate_quiz", result.RunID, "quiz_run", result.Duration, runErr)
	s.logger.Info(fmt.Sprintf("--- Quiz Generator Process Finished (Status: %s) ---", result.Status))

	if runErr != nil {
		return result, fmt.Errorf("%w: %v", ErrAgentRunFailed, runErr)
	}
	return result, nil
}

// runPipeline creates a session, runs the agent tree and extracts the final
// quiz JSON. Every event is appended to collected.
func (s *quizService) runPipeline(ctx context.Context, req *GenerateQuizRequest, result *QuizResult, collected *[]agents.Event) (json.RawMessage, error) {
	root, err := s.buildPipeline(req.UseCache)
	if err != nil {
		return nil, err
	}

	userID := uuid.NewString()
	session, err := s.sessions.CreateSession(ctx, s.config.AppName, userID, map[string]string{stateURL: req.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer s.sessions.DeleteSession(ctx, s.config.AppName, userID, session.ID)
	result.SessionID = session.ID
	s.logger.Info("Session created", "session_id", session.ID, "user_id", userID)

	runner := agents.NewRunner(s.config.AppName, root, s.sessions, s.logger)
	runErr := runner.Run(ctx, userID, session.ID, QuizPrompt(req.URL, req.UseCache), func(e agents.Event) {
		*collected = append(*collected, e)
	})
	if runErr != nil {
		return nil, runErr
	}

	quizJSON, err := ExtractFinalJSON(*collected)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Extracted final JSON response.")
	s.logger.Debug("Final JSON content", "json", string(quizJSON))
	return quizJSON, nil
}

// buildPipeline assembles
// Sequential[Brief, Parallel[MCQ, TF], Checkpoint, Sequential[Validator, Formatter]].
func (s *quizService) buildPipeline(useCache bool) (agents.Agent, error) {
	build := func(id string) (*agents.LLMAgent, error) {
		return s.specs.Build(id, s.provider, s.tools)
	}

	acquisition, err := build("content_acquisition")
	if err != nil {
		return nil, err
	}
	mcq, err := build("mcq_generation")
	if err != nil {
		return nil, err
	}
	tf, err := build("tf_generation")
	if err != nil {
		return nil, err
	}
	validatorAgent, err := build("validator")
	if err != nil {
		return nil, err
	}
	formatter, err := build("formatter")
	if err != nil {
		return nil, err
	}

	return agents.NewSequentialAgent("QuizOrchestrator",
		s.briefStage(acquisition, useCache),
		agents.NewParallelAgent("QuestionGeneration", mcq, tf),
		agents.NewFuncAgent("QuizCheckpointAgent", s.checkpoint),
		agents.NewSequentialAgent("ReviewAndFormat", validatorAgent, formatter),
	), nil
}

// briefStage uses a cached brief when allowed and falls back to acquisition
// on a miss or a cache error. Fresh briefs are written back.
func (s *quizService) briefStage(acquisition agents.Agent, useCache bool) agents.Agent {
	const name = "ContentBriefAgent"
	return agents.NewFuncAgent(name, func(ctx context.Context, ic *agents.InvocationContext) error {
		url, _ := ic.State().Get(stateURL)

		if useCache && s.briefs != nil {
			brief, err := s.briefs.Load(ctx, url)
			switch {
			case err == nil:
				ic.State().Set(KeyContentBrief, brief)
				ic.Emit(name, "Using cached content brief.", false)
				s.logger.Info("Using cached content brief", "url", url)
				return nil
			case errors.Is(err, cache.ErrCacheMiss):
				s.logger.Info("No cached content brief, scraping", "url", url)
			default:
				s.logger.Warn("Failed to read cached content brief, scraping", "url", url, "error", err)
			}
		}

		if err := agents.RunSubAgent(ctx, ic, acquisition); err != nil {
			return err
		}

		if s.briefs != nil {
			brief, _ := ic.State().Get(KeyContentBrief)
			if err := s.briefs.Store(ctx, url, brief); err != nil {
				s.logger.Warn("Failed to cache content brief", "error", err)
			}
		}
		return nil
	})
}

// checkpoint sorts the generator outputs, writes generated_quiz.json and
// fails when neither generator produced questions.
func (s *quizService) checkpoint(ctx context.Context, ic *agents.InvocationContext) error {
	mcqOut, _ := ic.State().Get(KeyMCQQuestions)
	tfOut, _ := ic.State().Get(KeyTFQuestions)

	generated, skipped := ClassifyQuestionLists(mcqOut, tfOut)
	for _, reason := range skipped {
		s.logger.Warn("Ignoring generator output", "reason", reason)
	}
	if generated.IsEmpty() {
		return ErrNoGeneratedQuiz
	}

	data, err := json.MarshalIndent(generated, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode generated quiz: %w", err)
	}
	ic.State().Set(KeyGeneratedQuiz, string(data))

	path := s.outputPath(GeneratedQuizFile)
	if err := s.store.Write(ctx, path, data); err != nil {
		return fmt.Errorf("failed to save generated quiz: %w", err)
	}
	s.logger.Info("Saved combined quiz", "path", path,
		"mcq_count", len(generated.MultipleChoice), "tf_count", len(generated.TrueFalse))
	ic.Emit("QuizCheckpointAgent", fmt.Sprintf("Saved generated quiz to '%s'.", path), false)
	return nil
}

// ===== OUTPUTS =====

func (s *quizService) finishSuccess(ctx context.Context, result *QuizResult, quizJSON json.RawMessage) {
	quiz := result.Quiz
	if quiz.IsEmpty() {
		s.logger.Warn("JSON was valid, but contained no questions.")
	}
	s.logger.Info(fmt.Sprintf("Quiz contains %d MCQs and %d T/F questions.", len(quiz.MultipleChoice), len(quiz.TrueFalse)))

	if warnings := s.validator.ValidateQuiz(quiz); len(warnings) > 0 {
		result.Warnings = warnings
		s.opLogger.LogValidationWarnings(ctx, "generate_quiz", result.RunID, warnings)
	}

	data, err := indentJSON(quizJSON)
	if err != nil {
		s.logger.Error("Failed to format quiz JSON", "error", err)
		data = quizJSON
	}
	s.logger.Info("Saving JSON", "path", result.JSONPath)
	s.logger.Info("Save JSON result: " + s.writeFile(ctx, result.JSONPath, data))

	docPath := s.outputPath(QuizDocumentFile)
	message := tools.QuizToWordWithSources(ctx, docPath, string(quizJSON))
	s.logger.Info("Generate Word result: " + message)
	if strings.HasPrefix(message, "Quiz successfully saved") {
		result.DocumentPath = docPath
	}

	if s.config.ExportXLSX {
		sheetPath := s.outputPath(QuizSheetFile)
		if err := s.writeSpreadsheet(ctx, sheetPath, quiz); err != nil {
			s.logger.Error("Failed to write spreadsheet", "path", sheetPath, "error", err)
		} else {
			result.SpreadsheetPath = sheetPath
		}
	}
}

func (s *quizService) writeFailureReport(ctx context.Context, result *QuizResult, collected []agents.Event) {
	raw := make([]string, 0, len(collected))
	for _, e := range collected {
		line, err := json.Marshal(e)
		if err != nil {
			line = []byte(e.Text)
		}
		raw = append(raw, string(line))
	}

	data, err := export.MarshalIndent(export.FailureReport{
		Error:     result.Error,
		RawOutput: strings.Join(raw, "\n"),
	})
	if err != nil {
		s.logger.Error("Failed to encode failure report", "error", err)
		return
	}
	s.logger.Info("Saving debug JSON", "path", result.JSONPath)
	s.logger.Info("Save JSON result: " + s.writeFile(ctx, result.JSONPath, data))
}

func (s *quizService) writeSpreadsheet(ctx context.Context, path string, quiz *models.Quiz) error {
	data, err := export.QuizToExcel(quiz)
	if err != nil {
		return err
	}
	return s.store.Write(ctx, path, data)
}

// writeFile reports the outcome the same way the file_writer tool does.
func (s *quizService) writeFile(ctx context.Context, path string, data []byte) string {
	return tools.NewFileTools(s.store).WriteFileContent(ctx, path, string(data))
}

func (s *quizService) outputPath(name string) string {
	return filepath.Join(s.config.OutputDir, name)
}

// record pushes metrics, stores the run and publishes its event. None of
// these can fail the run.
func (s *quizService) record(ctx context.Context, result *QuizResult, quizJSON json.RawMessage) {
	questionCount := 0
	if result.Quiz != nil {
		questionCount = result.Quiz.QuestionCount()
	}

	if s.metrics != nil {
		s.metrics.ObserveRun(result.Status, result.Duration, questionCount)
		if err := s.metrics.Push(); err != nil {
			s.logger.Warn("Run metrics were not pushed", "run_id", result.RunID, "error", err)
		}
	}

	if s.runs != nil {
		run := &models.QuizRun{
			ID:            result.RunID,
			SessionID:     result.SessionID,
			URL:           result.URL,
			UseCache:      result.UseCache,
			Status:        result.Status,
			QuestionCount: questionCount,
			DurationMs:    result.Duration.Milliseconds(),
			Error:         result.Error,
			StartedAt:     time.Now().Add(-result.Duration),
		}
		if result.Quiz != nil {
			run.MCQCount = len(result.Quiz.MultipleChoice)
			run.TFCount = len(result.Quiz.TrueFalse)
			run.Quiz = datatypes.JSON(quizJSON)
		}
		if err := s.runs.Create(ctx, run); err != nil {
			s.logger.Error("Failed to persist quiz run", "run_id", run.ID, "error", err)
		}
	}

	if s.publisher != nil {
		var event *events.RunEvent
		if result.Status == models.RunSuccess {
			event = events.NewQuizGeneratedEvent(events.QuizGeneratedEvent{
				RunID:        result.RunID,
				SessionID:    result.SessionID,
				URL:          result.URL,
				UseCache:     result.UseCache,
				MCQCount:     len(result.Quiz.MultipleChoice),
				TFCount:      len(result.Quiz.TrueFalse),
				SourceCount:  len(result.Quiz.FactCheckingSources),
				DurationSecs: result.Duration.Seconds(),
				JSONPath:     result.JSONPath,
				DocumentPath: result.DocumentPath,
			})
		} else {
			event = events.NewQuizFailedEvent(events.QuizFailedEvent{
				RunID:        result.RunID,
				SessionID:    result.SessionID,
				URL:          result.URL,
				Error:        result.Error,
				DurationSecs: result.Duration.Seconds(),
			})
		}
		if err := s.publisher.PublishRunEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish run event", "run_id", result.RunID, "type", event.Type, "error", err)
		}
	}
}

// ===== RUN HISTORY =====

func (s *quizService) GetRun(ctx context.Context, id string) (*models.QuizRun, error) {
	if s.runs == nil {
		return nil, ErrRunNotFound
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get quiz run: %w", err)
	}
	return run, nil
}

func (s *quizService) GetLatestRun(ctx context.Context, url string) (*models.QuizRun, error) {
	if s.runs == nil {
		return nil, ErrRunNotFound
	}
	run, err := s.runs.GetLatestByURL(ctx, strings.TrimSpace(url))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get latest quiz run: %w", err)
	}
	return run, nil
}

func (s *quizService) ListRuns(ctx context.Context, filters repositories.QuizRunFilters) ([]*models.QuizRun, int64, error) {
	if s.runs == nil {
		return []*models.QuizRun{}, 0, nil
	}
	runs, total, err := s.runs.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quiz runs: %w", err)
	}
	return runs, total, nil
}

func (s *quizService) GetStats(ctx context.Context) (*repositories.QuizRunStats, error) {
	if s.runs == nil {
		return &repositories.QuizRunStats{}, nil
	}
	stats, err := s.runs.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz run stats: %w", err)
	}
	return stats, nil
}
