package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/crew"
	"github.com/SAP-F-2025/quiz-generator/internal/events"
	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/storage"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
	"github.com/SAP-F-2025/quiz-generator/internal/validator"
)

const TripPlannerCrew = "trip_planner"

type tripService struct {
	provider  llm.Provider
	crew      *crew.Crew
	outputDir string
	store     *storage.Store
	publisher events.EventPublisher
	validator *validator.Validator
	logger    utils.Logger
	opLogger  *ServiceLogger
}

// NewTripService loads the trip planner crew. Plans are saved under
// outputDir; publisher may be nil.
func NewTripService(provider llm.Provider, outputDir string, publisher events.EventPublisher, v *validator.Validator, logger utils.Logger) (TripService, error) {
	c, err := crew.Load(TripPlannerCrew)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if v == nil {
		v = validator.New()
	}
	return &tripService{
		provider:  provider,
		crew:      c,
		outputDir: outputDir,
		store:     storage.New(),
		publisher: publisher,
		validator: v,
		logger:    logger,
		opLogger: NewServiceLogger(utils.ToSlogLogger(logger), LogConfig{
			Service:   "quiz-generator",
			Component: "trip_service",
		}),
	}, nil
}

func (s *tripService) Plan(ctx context.Context, req *models.TripRequest) (*TripPlanResult, error) {
	start := time.Now()
	req.PreferredRegion = strings.TrimSpace(req.PreferredRegion)
	req.TripType = models.TripType(strings.ToLower(strings.TrimSpace(string(req.TripType))))

	if err := s.validator.Validate(req); err != nil {
		s.opLogger.LogOperation(ctx, "plan_trip", "", "trip_plan", time.Since(start), err)
		return nil, err
	}

	result, err := s.plan(ctx, req)
	if result != nil {
		result.Duration = time.Since(start)
	}
	s.opLogger.LogOperation(ctx, "plan_trip", string(req.TripType)+"/"+req.PreferredRegion, "trip_plan", time.Since(start), err)
	return result, err
}

func (s *tripService) plan(ctx context.Context, req *models.TripRequest) (*TripPlanResult, error) {
	// A fresh writer per run so Saved only reflects this run.
	writer := tools.NewTripPlanWriter(s.outputDir, s.store)
	runner := &crew.Runner{
		Provider: s.provider,
		Tools:    tools.NewRegistry(writer.Tool()),
		Store:    s.store,
		Logger:   s.logger,
	}

	s.logger.Info("Running crew", "crew", s.crew.Name, "preferred_region", req.PreferredRegion, "trip_type", req.TripType)
	out, err := runner.Kickoff(ctx, s.crew, req.Inputs())
	if err != nil {
		return nil, fmt.Errorf("an error occurred while running the crew: %w", err)
	}
	if strings.TrimSpace(out.Final) == "" {
		return nil, ErrEmptyTripPlan
	}

	// The budget advisor is asked to save the plan itself. When it did not,
	// save its final answer.
	if !writer.Saved() {
		message := writer.WriteTripPlan(ctx, out.Final)
		s.logger.Info("Save trip plan result: " + message)
		if !writer.Saved() {
			return nil, fmt.Errorf("%s", message)
		}
	}

	result := &TripPlanResult{
		Request:    *req,
		Plan:       out.Final,
		OutputPath: writer.Path(),
	}

	if s.publisher != nil {
		event := events.NewTripPlannedEvent(events.TripPlannedEvent{
			PreferredRegion: req.PreferredRegion,
			TripType:        string(req.TripType),
			OutputPath:      result.OutputPath,
		})
		if err := s.publisher.PublishRunEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish run event", "type", event.Type, "error", err)
		}
	}
	return result, nil
}
